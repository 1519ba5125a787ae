package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/firmsite-api/internal/models"
)

func setupContactTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ContactSubmission{}))
	return db
}

func findByReference(t *testing.T, db *gorm.DB, referenceID string) (models.ContactSubmission, error) {
	t.Helper()
	var submission models.ContactSubmission
	err := db.Where("reference_id = ?", referenceID).First(&submission).Error
	return submission, err
}

func TestContactRepositoryCreateAndUpdateStatus(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	submission := models.ContactSubmission{
		ReferenceID: "ref-1",
		Name:        "Jane Doe",
		Phone:       "0812345678",
		Email:       "jane@x.com",
		Service:     string(models.ServiceRegistrations),
		Status:      models.ContactStatusQueued,
	}
	require.NoError(t, repo.Create(ctx, &submission))
	require.NotZero(t, submission.ID)

	delivered := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateStatus(ctx, submission.ID, models.ContactStatusSent, &delivered))

	stored, err := findByReference(t, db, "ref-1")
	require.NoError(t, err)
	require.Equal(t, models.ContactStatusSent, stored.Status)
	require.NotNil(t, stored.DeliveredAt)
	require.True(t, delivered.Equal(stored.DeliveredAt.UTC()))
}

func TestContactRepositoryUpdateStatusWithoutDelivery(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	submission := models.ContactSubmission{ReferenceID: "ref-2", Name: "A", Phone: "1", Email: "a@b.co", Service: "tax", Status: models.ContactStatusQueued}
	require.NoError(t, repo.Create(ctx, &submission))
	require.NoError(t, repo.UpdateStatus(ctx, submission.ID, models.ContactStatusFailed, nil))

	stored, err := findByReference(t, db, "ref-2")
	require.NoError(t, err)
	require.Equal(t, models.ContactStatusFailed, stored.Status)
	require.Nil(t, stored.DeliveredAt)

	_, err = findByReference(t, db, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
