package models

import "time"

// Product is a protected catalog entry
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name" binding:"required,min=3,max=200"`
	Description string    `gorm:"size:2000" json:"description"`
	Price       float64   `gorm:"not null" json:"price" binding:"min=0"`
	Stock       int       `gorm:"not null" json:"stock"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	SKU         string    `gorm:"size:100" json:"sku"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }
