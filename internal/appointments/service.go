// Package appointments books visits into a fixed set of daily time slots.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// DateLayout is the wire format of appointment dates.
const DateLayout = "2006-01-02"

// TimeSlots are the bookable slots of a day, in order.
var TimeSlots = []string{
	"09:00 AM",
	"10:00 AM",
	"11:00 AM",
	"02:00 PM",
	"03:00 PM",
	"04:00 PM",
}

var (
	ErrIncomplete  = errors.New("please select both date and time")
	ErrInvalidSlot = errors.New("time slot is not available")
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
)

// Repository persists appointments.
type Repository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)
}

// Request is a booking as submitted by the user.
type Request struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Notes    string `json:"notes"`
}

// Service validates and stores bookings.
type Service struct {
	repo Repository
}

// NewService creates a booking service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Slots returns a copy of the bookable slots.
func (s *Service) Slots() []string {
	return append([]string(nil), TimeSlots...)
}

func validSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Book stores an appointment for user.
func (s *Service) Book(ctx context.Context, user models.CurrentUser, req Request) (models.Appointment, error) {
	date := strings.TrimSpace(req.Date)
	slot := strings.TrimSpace(req.TimeSlot)
	if date == "" || slot == "" {
		return models.Appointment{}, ErrIncomplete
	}
	if !validSlot(slot) {
		return models.Appointment{}, ErrInvalidSlot
	}
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return models.Appointment{}, ErrInvalidDate
	}

	appt := models.Appointment{
		UserID:   user.ID,
		Date:     day,
		TimeSlot: slot,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Create(ctx, &appt); err != nil {
		return models.Appointment{}, fmt.Errorf("booking appointment: %w", err)
	}
	return appt, nil
}

// List returns the user's appointments, newest booking first.
func (s *Service) List(ctx context.Context, user models.CurrentUser) ([]models.Appointment, error) {
	appts, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return appts, nil
}
