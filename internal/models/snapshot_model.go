package models

import (
	"time"
)

const SnapshotsTableName = "wcif_saves"

// SnapshotModel indexes one immutable WCIF snapshot stored in the blob
// store under BlobKey. Rows are created by the save flow and deleted
// only by the retention sweeper. The blob store owns the payload; this
// row is metadata pointing at it.
type SnapshotModel struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	BlobKey            string     `gorm:"not null;uniqueIndex" json:"blob_key"`
	CompetitionID      string     `gorm:"not null;index" json:"competition_id"`
	CompetitionEndDate time.Time  `gorm:"not null;index" json:"competition_end_date"`
	Description        string     `gorm:"not null" json:"description"`
	SavedBy            *uint      `json:"saved_by"`
	SavedByUser        *UserModel `gorm:"foreignKey:SavedBy;constraint:OnDelete:SET NULL" json:"-"`
	SavedAt            time.Time  `gorm:"not null" json:"saved_at"`
}

func (SnapshotModel) TableName() string {
	return SnapshotsTableName
}
