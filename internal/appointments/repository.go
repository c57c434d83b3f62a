package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// GormRepository stores appointments in Postgres.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// MemoryRepository keeps appointments in process memory. Used when Postgres
// is not configured.
type MemoryRepository struct {
	mu    sync.Mutex
	appts []models.Appointment
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	now := r.now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	r.appts = append(r.appts, *appt)
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appts := []models.Appointment{}
	for _, a := range r.appts {
		if a.UserID == userID {
			appts = append(appts, a)
		}
	}
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].CreatedAt.After(appts[j].CreatedAt)
	})
	return appts, nil
}
