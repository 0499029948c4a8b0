package models

import (
	"fmt"

	"github.com/pasetolabs/paseto-api/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&RefreshSession{},
		&Product{},
		&Banner{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData inserts demo banners and products when the tables are empty
func SeedDefaultData() error {
	var bannerCount int64
	DB.Model(&Banner{}).Count(&bannerCount)
	if bannerCount == 0 {
		banners := []Banner{
			{Title: "Welcome Sale", Description: "Up to 50% off selected items", ImageURL: "https://cdn.example.com/banners/welcome.png", LinkURL: "/sale", DisplayOrder: 1, Active: true},
			{Title: "New Arrivals", Description: "Fresh stock every week", ImageURL: "https://cdn.example.com/banners/new.png", LinkURL: "/new", DisplayOrder: 2, Active: true},
			{Title: "Free Shipping", Description: "On orders over $50", ImageURL: "https://cdn.example.com/banners/shipping.png", DisplayOrder: 3, Active: false},
		}
		if err := DB.Create(&banners).Error; err != nil {
			return err
		}
	}

	var productCount int64
	DB.Model(&Product{}).Count(&productCount)
	if productCount == 0 {
		products := []Product{
			{Name: "Wireless Mouse", Description: "2.4 GHz ergonomic mouse", Price: 24.99, Stock: 120, SKU: "WM-001", Active: true},
			{Name: "Mechanical Keyboard", Description: "Hot-swappable switches", Price: 89.90, Stock: 45, SKU: "MK-010", Active: true},
			{Name: "USB-C Hub", Description: "7-in-1 aluminium hub", Price: 39.00, Stock: 80, SKU: "UH-007", Active: true},
		}
		if err := DB.Create(&products).Error; err != nil {
			return err
		}
	}

	return nil
}
