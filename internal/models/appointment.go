package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment represents a booked visit
type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	UserID    string    `gorm:"index" json:"userId"`
	Date      time.Time `gorm:"type:date" json:"date"`
	TimeSlot  string    `gorm:"type:varchar(16)" json:"timeSlot"`
	Notes     string    `json:"notes,omitempty"`
}
