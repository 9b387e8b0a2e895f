package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"github.com/cubetrack/wcifhistoryapi/internal/repository"
	"github.com/cubetrack/wcifhistoryapi/internal/storage"
	"github.com/cubetrack/wcifhistoryapi/internal/wca"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// Snapshots whose competition ended this long ago are swept.
const snapshotRetention = 14 * 24 * time.Hour

// SnapshotService saves WCIF snapshots to the blob store with a
// relational index, serves them back, and sweeps old ones.
type SnapshotService struct {
	repo      *repository.SnapshotRepository
	blob      storage.BlobStore
	wcaClient *wca.Client
	sessions  *SessionService
	now       func() time.Time
}

// NewSnapshotService creates a new service for snapshot operations
func NewSnapshotService(db *gorm.DB, blob storage.BlobStore, wcaClient *wca.Client, sessions *SessionService) *SnapshotService {
	return &SnapshotService{
		repo:      repository.NewSnapshotRepository(db),
		blob:      blob,
		wcaClient: wcaClient,
		sessions:  sessions,
		now:       time.Now,
	}
}

// SaveSnapshot fetches the competition's WCIF from the WCA and persists
// it: blob first, index row only after the blob write succeeds. A
// crash between the two leaves an orphaned blob with no index row, but
// never an index row pointing at a missing blob.
func (s *SnapshotService) SaveSnapshot(ctx context.Context, sessionID string, userID uint, competitionID, description string) (*models.SnapshotModel, error) {
	wcaToken, err := s.sessions.ResolveWCAToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := s.wcaClient.GetWCIF(ctx, wcaToken, competitionID)
	if err != nil {
		return nil, err
	}

	endDate, err := wca.CompetitionEndDate(payload)
	if err != nil {
		return nil, err
	}

	savedAt := s.now()
	key := storage.ComputeKey(competitionID, userID, savedAt)

	if err := s.blob.Put(ctx, key, payload); err != nil {
		return nil, err
	}

	snapshot := &models.SnapshotModel{
		BlobKey:            key,
		CompetitionID:      competitionID,
		CompetitionEndDate: endDate,
		Description:        description,
		SavedBy:            &userID,
		SavedAt:            savedAt,
	}

	if err := s.repo.InsertSnapshot(snapshot); err != nil {
		return nil, apperror.Storage("failed to insert snapshot record", err)
	}
	return snapshot, nil
}

// ListSaves lists the stored snapshots for one competition
func (s *SnapshotService) ListSaves(competitionID string) ([]repository.SaveSummary, error) {
	saves, err := s.repo.ListSavesByCompetition(competitionID)
	if err != nil {
		return nil, apperror.Storage("failed to list saves", err)
	}
	return saves, nil
}

// Save is one stored snapshot with its payload
type Save struct {
	ID          uint            `json:"id"`
	SavedAt     time.Time       `json:"saved_at"`
	Description string          `json:"description"`
	SavedBy     string          `json:"saved_by"`
	Wcif        json.RawMessage `json:"wcif"`
}

// GetSave returns one stored snapshot's metadata and payload
func (s *SnapshotService) GetSave(ctx context.Context, saveID uint) (*Save, error) {
	detail, err := s.repo.GetSaveByID(saveID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("save", strconv.FormatUint(uint64(saveID), 10))
		}
		return nil, apperror.Storage("failed to load save", err)
	}

	payload, err := s.blob.Get(ctx, detail.BlobKey)
	if err != nil {
		return nil, err
	}

	return &Save{
		ID:          detail.ID,
		SavedAt:     detail.SavedAt,
		Description: detail.Description,
		SavedBy:     detail.SavedBy,
		Wcif:        payload,
	}, nil
}

// CleanupOldSnapshots deletes snapshots whose competition ended before
// the retention cutoff. Each record is an independent unit of work: the
// blob is removed first, then the index row, and a per-record failure
// is logged and skipped without aborting the batch. The index row is
// kept whenever the blob removal fails, so no payload is silently lost.
func (s *SnapshotService) CleanupOldSnapshots(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-snapshotRetention)

	snapshots, err := s.repo.ListEndedBefore(cutoff)
	if err != nil {
		return 0, apperror.Storage("failed to list snapshots for cleanup", err)
	}

	var deleted int64
	for _, snapshot := range snapshots {
		if err := s.blob.Delete(ctx, snapshot.BlobKey); err != nil {
			zaplogger.Error("failed to delete snapshot blob", zaplogger.Fields{
				"id":       snapshot.ID,
				"blob_key": snapshot.BlobKey,
				"error":    err.Error(),
			})
			continue
		}
		if err := s.repo.DeleteSnapshot(snapshot.ID); err != nil {
			zaplogger.Error("failed to delete snapshot record", zaplogger.Fields{
				"id":       snapshot.ID,
				"blob_key": snapshot.BlobKey,
				"error":    err.Error(),
			})
			continue
		}
		deleted++
	}

	return deleted, nil
}
