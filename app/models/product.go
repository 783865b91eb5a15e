package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents an item in the catalogue. Price is a decimal string.
type Product struct {
	ID          string    `gorm:"primaryKey;size:36"             bson:"_id"         json:"id"`
	Title       string    `gorm:"size:255;not null;uniqueIndex"  bson:"title"       json:"title"`
	Price       string    `gorm:"size:32;not null"               bson:"price"       json:"price"`
	Description string    `gorm:"size:400;not null"              bson:"description" json:"description"`
	ImagePath   string    `gorm:"size:512"                       bson:"imageUrl"    json:"imageUrl"`
	UserID      string    `gorm:"size:36;index"                  bson:"userId"      json:"userId"`
	CreatedAt   time.Time `                                      bson:"createdAt"   json:"createdAt"`
	UpdatedAt   time.Time `                                      bson:"updatedAt"   json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns a UUID when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Snapshot copies the fields that an order keeps forever.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		ImagePath:   p.ImagePath,
		UserID:      p.UserID,
	}
}
