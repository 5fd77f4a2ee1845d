package submission

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission is a stored festival entry.
type Submission struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status Status    `gorm:"type:varchar(16);not null;default:pending;index"`

	Gender       string `gorm:"type:varchar(16)"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"not null;index"`
	Country      string
	PhoneNumber  string
	MobileNumber string

	Address        string
	Street         string
	Street2        string
	Zipcode        string
	City           string
	StateRegion    string
	AddressCountry string

	AcquisitionSource      string
	AcquisitionSourceOther string
	AgeVerified            bool

	Title          string
	TitleEN        string `gorm:"not null"`
	Language       string
	Synopsis       string `gorm:"type:text"`
	SynopsisEN     string `gorm:"type:text"`
	TechResume     string `gorm:"type:text"`
	CreativeResume string `gorm:"type:text"`
	Classification string `gorm:"type:varchar(16)"`

	RightsAccepted  bool
	NewsletterOptIn bool
	DurationSeconds float64
	DeviceID        string `gorm:"type:varchar(128)"`

	Contributors   []Contributor   `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
	SocialNetworks []SocialNetwork `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
	Tags           []Tag           `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
	Files          []File          `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for submissions
func (Submission) TableName() string { return "submissions" }

// BeforeCreate assigns the id when none was set
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}

// Contributor is a person credited on a submission.
type Contributor struct {
	ID             uint      `gorm:"primaryKey"`
	SubmissionID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Position       int       `gorm:"not null"`
	Gender         string    `gorm:"type:varchar(16)"`
	FirstName      string
	LastName       string
	Email          string
	ProductionRole string
}

// TableName specifies the table name for contributors
func (Contributor) TableName() string { return "submission_contributors" }

// SocialNetwork is a profile URL of the submitter.
type SocialNetwork struct {
	ID           uint      `gorm:"primaryKey"`
	SubmissionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Platform     string    `gorm:"type:varchar(32);not null"`
	URL          string    `gorm:"not null"`
}

// TableName specifies the table name for social networks
func (SocialNetwork) TableName() string { return "submission_social_networks" }

// Tag is a keyword of a submission.
type Tag struct {
	ID           uint      `gorm:"primaryKey"`
	SubmissionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Position     int       `gorm:"not null"`
	Value        string    `gorm:"type:varchar(32);not null"`
}

// TableName specifies the table name for tags
func (Tag) TableName() string { return "submission_tags" }

// File is a stored upload. Role is the multipart field it arrived under.
type File struct {
	ID           uint      `gorm:"primaryKey"`
	SubmissionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Role         string    `gorm:"type:varchar(16);not null"`
	Position     int       `gorm:"not null"`
	FileName     string    `gorm:"not null"`
	ContentType  string    `gorm:"not null"`
	Size         int64     `gorm:"not null"`
	StorageKey   string    `gorm:"not null"`
	Location     string
	CreatedAt    time.Time
}

// TableName specifies the table name for files
func (File) TableName() string { return "submission_files" }

// Models lists every table of the package for migrations.
func Models() []interface{} {
	return []interface{}{&Submission{}, &Contributor{}, &SocialNetwork{}, &Tag{}, &File{}}
}
