package repositories

import (
	"context"

	"github.com/bbernstein/lightcore-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// ShowRepository handles saved show document data access.
type ShowRepository struct {
	db *gorm.DB
}

// NewShowRepository creates a new ShowRepository.
func NewShowRepository(db *gorm.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

// FindAll returns all saved shows, most recently updated first.
func (r *ShowRepository) FindAll(ctx context.Context) ([]models.ShowRecord, error) {
	var shows []models.ShowRecord
	result := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&shows)
	return shows, result.Error
}

// FindByID returns a saved show by ID, or nil when absent.
func (r *ShowRepository) FindByID(ctx context.Context, id string) (*models.ShowRecord, error) {
	var rec models.ShowRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &rec, nil
}

// FindByName returns a saved show by name, or nil when absent.
func (r *ShowRepository) FindByName(ctx context.Context, name string) (*models.ShowRecord, error) {
	var rec models.ShowRecord
	result := r.db.WithContext(ctx).First(&rec, "name = ?", name)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &rec, nil
}

// Create creates a new saved show.
func (r *ShowRepository) Create(ctx context.Context, rec *models.ShowRecord) error {
	if rec.ID == "" {
		rec.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// Update updates an existing saved show.
func (r *ShowRepository) Update(ctx context.Context, rec *models.ShowRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Upsert saves a show document under its name, creating the row if needed.
func (r *ShowRepository) Upsert(ctx context.Context, name, document string) (*models.ShowRecord, error) {
	existing, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		rec := &models.ShowRecord{Name: name, Document: document}
		if err := r.Create(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	existing.Document = document
	if err := r.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete deletes a saved show by ID.
func (r *ShowRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.ShowRecord{}, "id = ?", id).Error
}
