package edittoken

import (
	"context"
	"testing"
	"time"

	"github.com/consensuslabs/festival/backend/testhelper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	require.NoError(t, db.AutoMigrate(&EditToken{}))

	svc, err := NewService(db, &Config{Secret: "test-secret", TTL: time.Hour}, testhelper.NewTestLogger(false))
	require.NoError(t, err)

	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, c
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(nil, &Config{}, testhelper.NewTestLogger(false))
	assert.Error(t, err)
}

func TestIssueAndConsume(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	token, record, err := svc.Issue(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, sub, record.SubmissionID)

	got, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	consumed, err := svc.Consume(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, consumed.UsedAt)

	_, err = svc.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrUsed)
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrUsed)
}

func TestValidateExpired(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidateInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Validate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)

	// well signed but never recorded
	claims := &Claims{
		SubmissionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(svc.now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.Validate(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalid)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Validate(ctx, other)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteExpired(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	used, _, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)
	_, err = svc.Consume(ctx, used)
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	n, err := svc.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	c.t = c.t.Add(2 * time.Hour)
	n, err = svc.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
