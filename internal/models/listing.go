package models

import "time"

const ListingStatusActive = "active"

// Listing is a classified ad. Price is nullable: "ask for price" ads carry none.
type Listing struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      string    `json:"user_id" gorm:"index;size:36"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Price       *float64  `json:"price"`
	Category    string    `json:"category" gorm:"index;size:100"`
	Location    *string   `json:"location" gorm:"size:255"`
	Condition   string    `json:"condition" gorm:"size:50"`
	ImageURL    *string   `json:"image_url" gorm:"size:1024"`
	Images      []string  `json:"images" gorm:"serializer:json;type:text"` // storage object paths
	IsPremium   bool      `json:"is_premium" gorm:"default:false"`
	Views       int       `json:"views" gorm:"default:0"`
	Status      string    `json:"status" gorm:"index;size:20;default:'active'"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}
