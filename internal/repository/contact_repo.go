package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/firmsite-api/internal/models"
)

// ContactRepository persists accepted contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, submission *models.ContactSubmission) error
	UpdateStatus(ctx context.Context, id uint, status string, deliveredAt *time.Time) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository constructs a repository backed by GORM.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, submission *models.ContactSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *contactRepository) UpdateStatus(ctx context.Context, id uint, status string, deliveredAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	return r.db.WithContext(ctx).
		Model(&models.ContactSubmission{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}
