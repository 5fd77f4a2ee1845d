package edittoken

import (
	"time"

	"github.com/google/uuid"
)

// EditToken records an issued token by its jti so it can be consumed once.
type EditToken struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID  `gorm:"type:uuid;index;not null" json:"submissionId"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TableName specifies the table name for edit tokens
func (EditToken) TableName() string {
	return "edit_tokens"
}
