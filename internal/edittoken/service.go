// Package edittoken issues single-use signed tokens that let a submitter
// reopen and amend a submission.
package edittoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalid = errors.New("edit token is invalid")
	ErrExpired = errors.New("edit token has expired")
	ErrUsed    = errors.New("edit token was already used")
)

// DefaultTTL applies when Config.TTL is unset.
const DefaultTTL = 7 * 24 * time.Hour

// Config configures token signing.
type Config struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// Claims are the signed token claims.
type Claims struct {
	SubmissionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Service issues, validates and consumes edit tokens.
type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

// NewService creates a token service.
func NewService(db *gorm.DB, cfg *Config, log logger.Logger) (*Service, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, errors.New("edit token secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{db: db, secret: []byte(cfg.Secret), ttl: ttl, logger: log, now: time.Now}, nil
}

// Issue signs a new token for submissionID and records it.
func (s *Service) Issue(ctx context.Context, submissionID uuid.UUID) (string, *EditToken, error) {
	now := s.now()
	record := &EditToken{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		ExpiresAt:    now.Add(s.ttl),
		CreatedAt:    now,
	}

	claims := &Claims{
		SubmissionID: submissionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID.String(),
			Subject:   submissionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign edit token: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", nil, s.logger.LogErrorf(err, "store edit token for submission %s", submissionID)
	}

	s.logger.LogInfo("Issued edit token", map[string]interface{}{
		"submissionID": submissionID.String(),
		"expiresAt":    record.ExpiresAt,
	})
	return signed, record, nil
}

// Validate checks the signature, expiry and usage of token.
func (s *Service) Validate(ctx context.Context, token string) (*EditToken, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalid
	}

	var record EditToken
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalid
		}
		return nil, fmt.Errorf("load edit token: %w", err)
	}
	if record.SubmissionID.String() != claims.SubmissionID {
		return nil, ErrInvalid
	}
	if record.UsedAt != nil {
		return nil, ErrUsed
	}
	if !s.now().Before(record.ExpiresAt) {
		return nil, ErrExpired
	}
	return &record, nil
}

// Consume validates token and marks it used. Only one caller wins a race.
func (s *Service) Consume(ctx context.Context, token string) (*EditToken, error) {
	record, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	usedAt := s.now()
	result := s.db.WithContext(ctx).Model(&EditToken{}).
		Where("id = ? AND used_at IS NULL", record.ID).
		Update("used_at", usedAt)
	if result.Error != nil {
		return nil, fmt.Errorf("consume edit token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUsed
	}

	record.UsedAt = &usedAt
	s.logger.LogInfo("Consumed edit token", map[string]interface{}{
		"submissionID": record.SubmissionID.String(),
	})
	return record, nil
}

// DeleteExpired removes tokens that can no longer be used.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", s.now()).
		Delete(&EditToken{})
	return result.RowsAffected, result.Error
}
