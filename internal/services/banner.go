package services

import (
	"github.com/pasetolabs/paseto-api/internal/models"
	"gorm.io/gorm"
)

type BannerService struct {
	db *gorm.DB
}

func NewBannerService(db *gorm.DB) *BannerService {
	return &BannerService{db: db}
}

func (s *BannerService) List() ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.Order("display_order ASC").Find(&banners).Error
	return banners, err
}

func (s *BannerService) ListActive() ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.Where("active = ?", true).Order("display_order ASC").Find(&banners).Error
	return banners, err
}

func (s *BannerService) GetByID(id uint) (*models.Banner, error) {
	var banner models.Banner
	if err := s.db.First(&banner, id).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (s *BannerService) Create(banner *models.Banner) error {
	return s.db.Create(banner).Error
}

func (s *BannerService) Update(id uint, updates map[string]interface{}) error {
	var banner models.Banner
	if err := s.db.First(&banner, id).Error; err != nil {
		return err
	}
	return s.db.Model(&banner).Updates(updates).Error
}

func (s *BannerService) Delete(id uint) error {
	var banner models.Banner
	if err := s.db.First(&banner, id).Error; err != nil {
		return err
	}
	return s.db.Delete(&banner).Error
}
