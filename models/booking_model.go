package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type Booking struct {
	ID          string         `gorm:"type:char(24);primaryKey" json:"_id"`
	TutorID     string         `gorm:"type:text;not null;uniqueIndex:idx_booking_tutor_user" json:"tutorId"`
	UserEmail   string         `gorm:"size:255;not null;uniqueIndex:idx_booking_tutor_user;index" json:"userEmail"`
	HasReviewed bool           `gorm:"not null;default:false" json:"hasReviewed"`
	Details     BookingDetails `gorm:"type:jsonb" json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// reservedBookingFields are owned by the server; a client can never set them
// through the free-form part of a booking.
var reservedBookingFields = map[string]bool{
	"_id":         true,
	"tutorId":     true,
	"userEmail":   true,
	"hasReviewed": true,
	"createdAt":   true,
}

// bookingFields mirrors the server-owned part of Booking for JSON decoding.
type bookingFields struct {
	ID          string    `json:"_id"`
	TutorID     string    `json:"tutorId"`
	UserEmail   string    `json:"userEmail"`
	HasReviewed bool      `json:"hasReviewed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MarshalJSON writes the extra booking fields at the top level next to the
// server-owned ones, which win on a clash.
func (b Booking) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Details)+len(reservedBookingFields))
	for key, value := range b.Details {
		out[key] = value
	}
	out["_id"] = b.ID
	out["tutorId"] = b.TutorID
	out["userEmail"] = b.UserEmail
	out["hasReviewed"] = b.HasReviewed
	out["createdAt"] = b.CreatedAt
	return json.Marshal(out)
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var fields bookingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	*b = Booking{
		ID:          fields.ID,
		TutorID:     fields.TutorID,
		UserEmail:   fields.UserEmail,
		HasReviewed: fields.HasReviewed,
		CreatedAt:   fields.CreatedAt,
		Details:     BookingDetails(all).Extra(),
	}
	return nil
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	return nil
}

// BookingDetails holds whatever extra fields the client attached to a booking.
type BookingDetails map[string]any

// Extra returns a copy of d without server-owned keys, or nil when nothing is left.
func (d BookingDetails) Extra() BookingDetails {
	var out BookingDetails
	for key, value := range d {
		if reservedBookingFields[key] {
			continue
		}
		if out == nil {
			out = BookingDetails{}
		}
		out[key] = value
	}
	return out
}

func (d BookingDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *BookingDetails) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("booking details: unsupported type %T", src)
	}
	return json.Unmarshal(raw, d)
}
