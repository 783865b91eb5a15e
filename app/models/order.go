package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductSnapshot is the product as it was when the order was placed.
type ProductSnapshot struct {
	ID          string `bson:"_id"         json:"id"`
	Title       string `bson:"title"       json:"title"`
	Price       string `bson:"price"       json:"price"`
	Description string `bson:"description" json:"description"`
	ImagePath   string `bson:"imageUrl"    json:"imageUrl"`
	UserID      string `bson:"userId"      json:"userId"`
}

// OrderLine pairs a snapshot with the ordered quantity.
type OrderLine struct {
	Product  ProductSnapshot `bson:"product"  json:"product"`
	Quantity int             `bson:"quantity" json:"quantity"`
}

// Total is price * quantity for this line.
func (l OrderLine) Total() decimal.Decimal {
	return money.Line(money.MustParse(l.Product.Price), l.Quantity)
}

// OrderUser identifies the purchaser.
type OrderUser struct {
	Name   string `gorm:"size:255"       bson:"name"   json:"name"`
	UserID string `gorm:"size:36;index"  bson:"userId" json:"userId"`
}

// Order is immutable once stored.
type Order struct {
	ID        string      `gorm:"primaryKey;size:36"               bson:"_id"       json:"id"`
	Products  []OrderLine `gorm:"serializer:json"                  bson:"products"  json:"products"`
	User      OrderUser   `gorm:"embedded;embeddedPrefix:user_"    bson:"user"      json:"user"`
	CreatedAt time.Time   `                                        bson:"createdAt" json:"createdAt"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Total sums the snapshot line totals.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Products {
		total = total.Add(line.Total())
	}
	return total
}

// OwnedBy reports whether userID placed the order.
func (o Order) OwnedBy(userID string) bool {
	return userID != "" && o.User.UserID == userID
}
