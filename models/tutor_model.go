package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type Tutor struct {
	ID          string    `gorm:"type:char(24);primaryKey" json:"_id"`
	Email       string    `gorm:"size:255;not null;index" json:"email"`
	Name        string    `gorm:"size:255" json:"name,omitempty"`
	Language    string    `gorm:"size:100;not null;index" json:"language"`
	Price       float64   `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Image       string    `gorm:"type:text" json:"image"`
	Description string    `gorm:"type:text" json:"description"`
	Review      int       `gorm:"not null;default:0;check:review >= 0" json:"review"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// BeforeCreate assigns an ObjectID so ids sort by creation time in every store.
func (t *Tutor) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	return nil
}

// TutorUpdate is the owner-editable subset of a tutor; nil fields are left untouched.
type TutorUpdate struct {
	Image       *string  `json:"image"`
	Language    *string  `json:"language" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
}

func (u TutorUpdate) IsEmpty() bool {
	return u.Image == nil && u.Language == nil && u.Price == nil && u.Description == nil
}

// Fields returns the column/field names being set, keyed by their stored name.
func (u TutorUpdate) Fields() map[string]any {
	fields := make(map[string]any, 4)
	if u.Image != nil {
		fields["image"] = *u.Image
	}
	if u.Language != nil {
		fields["language"] = *u.Language
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	return fields
}

type TutorFilter struct {
	OwnerEmail string
	Language   string
}

type TutorPage struct {
	Items      []Tutor `json:"items"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
	TotalItems int64   `json:"totalItems"`
}
