package services

import (
	"errors"
	"time"

	"github.com/pasetolabs/paseto-api/internal/models"
	"github.com/pasetolabs/paseto-api/internal/paseto"
	"github.com/pasetolabs/paseto-api/internal/utils"
	"github.com/pasetolabs/paseto-api/pkg/logger"
	"gorm.io/gorm"
)

// Rotation and credential failures the handlers map to responses. Everything
// token-shaped collapses to a single 401 at the boundary; the distinctions
// exist for logging and tests only.
var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrSessionNotFound     = errors.New("refresh session not found")
	ErrSessionInactive     = errors.New("refresh session revoked or expired")
	ErrTokenReuseDetected  = errors.New("refresh token reuse detected")
)

// errRotationConflict marks a lost conditional update inside the rotation
// transaction: a concurrent rotation of the same session already won.
var errRotationConflict = errors.New("refresh session rotation conflict")

type AuthService struct {
	db     *gorm.DB
	tokens *paseto.Service
}

func NewAuthService(db *gorm.DB, tokens *paseto.Service) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	DeviceInfo   string `json:"device_info"`
	IPAddress    string `json:"ip_address"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResult is returned by login, registration and refresh.
type AuthResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"` // access token lifetime, seconds
	User         *models.User `json:"user"`
}

// Login verifies credentials and issues a fresh token pair with a new
// refresh session.
func (s *AuthService) Login(req *LoginRequest, deviceInfo, ipAddress string) (*AuthResult, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokenPair(&user, deviceInfo, ipAddress)
}

// Register creates a new account and logs it in.
func (s *AuthService) Register(req *RegisterRequest, deviceInfo, ipAddress string) (*AuthResult, error) {
	var count int64
	s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Password: hashedPassword,
		Email:    req.Email,
		FullName: req.FullName,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return s.issueTokenPair(&user, deviceInfo, ipAddress)
}

// Refresh exchanges a valid refresh token for a new token pair, revoking the
// presented session. A presented token that no longer matches its session, or
// that belongs to a session already rotated away, is treated as theft: every
// active session of that user is revoked before the call fails.
func (s *AuthService) Refresh(req *RefreshRequest) (*AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	var session models.RefreshSession
	if err := s.db.Where("session_id = ?", claims.TokenID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// A cryptographically valid token proves authenticity, not freshness.
	if req.RefreshToken != session.Token || (session.Revoked && session.ReplacedBySessionID != nil) {
		logger.Warn().
			Uint("user_id", session.UserID).
			Str("session_id", session.SessionID).
			Msg("refresh token reuse detected, revoking all sessions for user")
		if err := s.RevokeAllUserSessions(session.UserID); err != nil {
			return nil, err
		}
		return nil, ErrTokenReuseDetected
	}

	if session.Revoked || session.IsExpired() {
		return nil, ErrSessionInactive
	}

	var user models.User
	if err := s.db.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	newSessionID := paseto.NewTokenID()
	newRefreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Username, newSessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newSession := models.RefreshSession{
		SessionID:  newSessionID,
		UserID:     user.ID,
		Token:      newRefreshToken,
		IssuedAt:   now,
		ExpiresAt:  now.Add(paseto.RefreshTokenTTL),
		DeviceInfo: req.DeviceInfo,
		IPAddress:  req.IPAddress,
	}

	// Revoke-then-replace is one atomic unit. The conditional update keyed by
	// session_id plus the exact token string guarantees that of two concurrent
	// rotations of the same token exactly one commits.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshSession{}).
			Where("session_id = ? AND token = ? AND revoked = ?", session.SessionID, req.RefreshToken, false).
			Updates(map[string]interface{}{
				"revoked":                true,
				"revoked_at":             now,
				"replaced_by_session_id": newSessionID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRotationConflict
		}
		return tx.Create(&newSession).Error
	})
	if err != nil {
		if errors.Is(err, errRotationConflict) {
			logger.Warn().
				Uint("user_id", session.UserID).
				Str("session_id", session.SessionID).
				Msg("concurrent rotation lost, treating replay as reuse")
			if err := s.RevokeAllUserSessions(session.UserID); err != nil {
				return nil, err
			}
			return nil, ErrTokenReuseDetected
		}
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Msg("refresh token rotated")

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(paseto.AccessTokenTTL / time.Second),
		User:         &user,
	}, nil
}

// Logout revokes the session behind the presented refresh token. It reports
// success no matter what: logout must never leak token validity and never
// keep a client from clearing local state.
func (s *AuthService) Logout(refreshToken string) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Debug().Msg("logout with invalid refresh token")
		return
	}

	if err := s.RevokeSession(claims.TokenID); err != nil {
		logger.Debug().Str("session_id", claims.TokenID).Err(err).Msg("logout could not revoke session")
	}
}

// RevokeSession marks one session revoked. Revoking an already revoked
// session is a no-op; an unknown session ID is an error.
func (s *AuthService) RevokeSession(sessionID string) error {
	var session models.RefreshSession
	if err := s.db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Revoked {
		return nil
	}

	return s.db.Model(&models.RefreshSession{}).
		Where("session_id = ? AND revoked = ?", sessionID, false).
		Updates(map[string]interface{}{"revoked": true, "revoked_at": time.Now()}).Error
}

// RevokeAllUserSessions revokes every active session of one user. Used by the
// reuse-detection cascade and by "log out everywhere".
func (s *AuthService) RevokeAllUserSessions(userID uint) error {
	return s.db.Model(&models.RefreshSession{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]interface{}{"revoked": true, "revoked_at": time.Now()}).Error
}

// ListUserSessions returns the user's active sessions, newest first.
func (s *AuthService) ListUserSessions(userID uint) ([]models.RefreshSession, error) {
	var sessions []models.RefreshSession
	err := s.db.
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Order("issued_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// PruneExpiredSessions deletes sessions whose validity window has passed,
// revoked or not. Housekeeping only; revocation state never depends on it.
func (s *AuthService) PruneExpiredSessions(now time.Time) (int64, error) {
	res := s.db.Where("expires_at < ?", now).Delete(&models.RefreshSession{})
	return res.RowsAffected, res.Error
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issueTokenPair(user *models.User, deviceInfo, ipAddress string) (*AuthResult, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	sessionID := paseto.NewTokenID()
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Username, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := models.RefreshSession{
		SessionID:  sessionID,
		UserID:     user.ID,
		Token:      refreshToken,
		IssuedAt:   now,
		ExpiresAt:  now.Add(paseto.RefreshTokenTTL),
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Str("session_id", sessionID).Msg("user authenticated")

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(paseto.AccessTokenTTL / time.Second),
		User:         user,
	}, nil
}
