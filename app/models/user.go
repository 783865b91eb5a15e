package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a shopper or admin. The cart is embedded in the user document.
type User struct {
	ID                string     `gorm:"primaryKey;size:36"            bson:"_id"                         json:"id"`
	Name              string     `gorm:"size:255"                      bson:"name"                        json:"name"`
	Email             string     `gorm:"uniqueIndex;size:255;not null" bson:"email"                       json:"email"`
	Password          string     `gorm:"size:255;not null"             bson:"password"                    json:"-"`
	Role              string     `gorm:"size:50;default:user"          bson:"role"                        json:"role"`
	Cart              Cart       `gorm:"serializer:json"               bson:"cart"                        json:"cart"`
	ResetToken        string     `gorm:"size:64;index"                 bson:"resetToken,omitempty"        json:"-"`
	ResetTokenExpires *time.Time `                                     bson:"resetTokenExpiration,omitempty" json:"-"`
	CreatedAt         time.Time  `                                     bson:"createdAt"                   json:"createdAt"`
	UpdatedAt         time.Time  `                                     bson:"updatedAt"                   json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName is what orders record as the purchaser's name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ResetTokenValid reports whether token matches and has not expired at now.
func (u User) ResetTokenValid(token string, now time.Time) bool {
	return token != "" && u.ResetToken == token &&
		u.ResetTokenExpires != nil && now.Before(*u.ResetTokenExpires)
}
