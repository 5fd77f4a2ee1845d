package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists submissions.
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	// Update rewrites the metadata of s and its collections. Stored files
	// whose role appears in files are replaced by files; the replaced rows
	// are returned.
	Update(ctx context.Context, s *Submission, files []File) ([]File, error)
}

// GormRepository implements Repository on GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a repository
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts s with every collection in one transaction
func (r *GormRepository) Create(ctx context.Context, s *Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		return nil
	})
}

// GetByID loads a submission and its collections
func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	ordered := func(columns string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB { return db.Order(columns) }
	}

	var s Submission
	err := r.db.WithContext(ctx).
		Preload("Contributors", ordered("position")).
		Preload("SocialNetworks", ordered("platform")).
		Preload("Tags", ordered("position")).
		Preload("Files", ordered("role, position")).
		First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}
	return &s, nil
}

// Update implements Repository
func (r *GormRepository) Update(ctx context.Context, s *Submission, files []File) ([]File, error) {
	var removed []File
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(s).
			Select("*").
			Omit(clause.Associations, "ID", "CreatedAt").
			Updates(s)
		if result.Error != nil {
			return fmt.Errorf("update submission: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		for _, model := range []interface{}{&Contributor{}, &SocialNetwork{}, &Tag{}} {
			if err := tx.Where("submission_id = ?", s.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("clear collections: %w", err)
			}
		}
		if err := createChildren(tx, s.ID, s.Contributors, s.SocialNetworks, s.Tags); err != nil {
			return err
		}

		roles := make([]string, 0, len(files))
		seen := map[string]bool{}
		for _, f := range files {
			if !seen[f.Role] {
				seen[f.Role] = true
				roles = append(roles, f.Role)
			}
		}
		if len(roles) == 0 {
			return nil
		}
		if err := tx.Where("submission_id = ? AND role IN ?", s.ID, roles).Find(&removed).Error; err != nil {
			return fmt.Errorf("load replaced files: %w", err)
		}
		if err := tx.Where("submission_id = ? AND role IN ?", s.ID, roles).Delete(&File{}).Error; err != nil {
			return fmt.Errorf("delete replaced files: %w", err)
		}
		for i := range files {
			files[i].ID = 0
			files[i].SubmissionID = s.ID
		}
		if err := tx.Create(&files).Error; err != nil {
			return fmt.Errorf("insert files: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func createChildren(tx *gorm.DB, id uuid.UUID, contributors []Contributor, socials []SocialNetwork, tags []Tag) error {
	for i := range contributors {
		contributors[i].ID, contributors[i].SubmissionID = 0, id
	}
	for i := range socials {
		socials[i].ID, socials[i].SubmissionID = 0, id
	}
	for i := range tags {
		tags[i].ID, tags[i].SubmissionID = 0, id
	}
	if len(contributors) > 0 {
		if err := tx.Create(&contributors).Error; err != nil {
			return fmt.Errorf("insert contributors: %w", err)
		}
	}
	if len(socials) > 0 {
		if err := tx.Create(&socials).Error; err != nil {
			return fmt.Errorf("insert social networks: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := tx.Create(&tags).Error; err != nil {
			return fmt.Errorf("insert tags: %w", err)
		}
	}
	return nil
}
