package services

import (
	"github.com/pasetolabs/paseto-api/internal/models"
	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

type ProductListParams struct {
	Page     int
	PageSize int
	Name     string
	Active   *bool
}

type ProductListResult struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

func (s *ProductService) List(params ProductListParams) (*ProductListResult, error) {
	var products []models.Product
	var total int64

	query := s.db.Model(&models.Product{})

	if params.Name != "" {
		query = query.Where("name LIKE ?", "%"+params.Name+"%")
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (params.Page - 1) * params.PageSize
	if err := query.Offset(offset).Limit(params.PageSize).Order("id DESC").Find(&products).Error; err != nil {
		return nil, err
	}

	return &ProductListResult{
		Items: products,
		Total: total,
	}, nil
}

func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Create(product *models.Product) error {
	return s.db.Create(product).Error
}

func (s *ProductService) Update(id uint, updates map[string]interface{}) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return err
	}
	return s.db.Model(&product).Updates(updates).Error
}

func (s *ProductService) Delete(id uint) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return err
	}
	return s.db.Delete(&product).Error
}
