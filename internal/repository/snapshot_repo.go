package repository

import (
	"errors"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"gorm.io/gorm"
)

type SnapshotRepository struct {
	DB *gorm.DB
}

// NewSnapshotRepository creates a new repository for WCIF snapshots
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

// SaveSummary is the listing row for a stored snapshot, joined with the
// name of the user who saved it.
type SaveSummary struct {
	ID          uint      `json:"id"`
	SavedAt     time.Time `json:"saved_at"`
	Description string    `json:"description"`
	SavedBy     string    `json:"saved_by"`
}

// SaveDetail is a single stored snapshot with its blob key
type SaveDetail struct {
	ID          uint      `json:"id"`
	BlobKey     string    `json:"-"`
	SavedAt     time.Time `json:"saved_at"`
	Description string    `json:"description"`
	SavedBy     string    `json:"saved_by"`
}

// InsertSnapshot inserts a new snapshot index row
func (r *SnapshotRepository) InsertSnapshot(snapshot *models.SnapshotModel) error {
	return r.DB.Create(snapshot).Error
}

// ListSavesByCompetition lists the stored snapshots for one competition
func (r *SnapshotRepository) ListSavesByCompetition(competitionID string) ([]SaveSummary, error) {
	var rows []SaveSummary
	err := r.DB.Table(models.SnapshotsTableName).
		Select("wcif_saves.id, wcif_saves.saved_at, wcif_saves.description, users.name AS saved_by").
		Joins("INNER JOIN users ON users.id = wcif_saves.saved_by").
		Where("wcif_saves.competition_id = ?", competitionID).
		Order("wcif_saves.saved_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetSaveByID gets one stored snapshot by index id. Returns
// gorm.ErrRecordNotFound when no row matches.
func (r *SnapshotRepository) GetSaveByID(saveID uint) (*SaveDetail, error) {
	var row SaveDetail
	err := r.DB.Table(models.SnapshotsTableName).
		Select("wcif_saves.id, wcif_saves.blob_key, wcif_saves.saved_at, wcif_saves.description, users.name AS saved_by").
		Joins("INNER JOIN users ON users.id = wcif_saves.saved_by").
		Where("wcif_saves.id = ?", saveID).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// ListEndedBefore lists snapshots whose source competition ended before
// the cutoff. Used by the retention sweeper.
func (r *SnapshotRepository) ListEndedBefore(cutoff time.Time) ([]models.SnapshotModel, error) {
	var rows []models.SnapshotModel
	err := r.DB.Where("competition_end_date < ?", cutoff).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteSnapshot deletes one snapshot index row by id
func (r *SnapshotRepository) DeleteSnapshot(id uint) error {
	return r.DB.Where("id = ?", id).Delete(&models.SnapshotModel{}).Error
}

// CountSnapshots returns the number of snapshot index rows
func (r *SnapshotRepository) CountSnapshots() (int64, error) {
	var count int64
	err := r.DB.Model(&models.SnapshotModel{}).Count(&count).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return count, err
}
