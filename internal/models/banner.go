package models

import "time"

// Banner is a public promotional entry
type Banner struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description  string    `gorm:"size:2000" json:"description"`
	ImageURL     string    `gorm:"size:500;not null" json:"image_url" binding:"required,max=500"`
	LinkURL      string    `gorm:"size:500" json:"link_url"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Banner) TableName() string { return "banners" }
