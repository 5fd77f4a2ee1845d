package draft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/stretchr/testify/require"
)

type countingPreview struct {
	name     string
	released int
}

func (p *countingPreview) Release() { p.released++ }

type previewRecorder struct {
	mu       sync.Mutex
	previews []*countingPreview
}

func (r *previewRecorder) Create(f media.File) (media.Preview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &countingPreview{name: f.Name()}
	r.previews = append(r.previews, p)
	return p, nil
}

func (r *previewRecorder) byName(name string) *countingPreview {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.previews {
		if p.name == name {
			return p
		}
	}
	return nil
}

type durationByName map[string]float64

func (d durationByName) ReadDuration(_ context.Context, f media.File) (float64, error) {
	return d[f.Name()], nil
}

type fakeSubmitter struct {
	receipt *Receipt
	err     error
	got     []Draft
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeSubmitter) Submit(ctx context.Context, d Draft) (*Receipt, error) {
	s.got = append(s.got, d)
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	return s.receipt, s.err
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	c        *Controller
	previews *previewRecorder
	now      time.Time
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{previews: &previewRecorder{}, now: testNow}
	env.c = New(Config{
		Checker:  media.NewChecker(media.DefaultLimits(), durationByName{"film.mp4": 120, "long.mp4": 150.01}),
		Previews: env.previews,
		Now:      func() time.Time { return env.now },
	})
	t.Cleanup(env.c.Close)
	return env
}

func set(t *testing.T, c *Controller, values map[string]string) {
	t.Helper()
	for path, v := range values {
		require.NoError(t, c.SetField(path, v), path)
	}
}

func validIdentity() map[string]string {
	return map[string]string{
		field.Gender:             "female",
		field.FirstName:          "  Agnès ",
		field.LastName:           "Varda",
		field.Email:              "Agnes@Example.com",
		field.Country:            "France",
		field.MobileNumber:       "+33 6 12 34 56 78",
		field.AddressStreet:      "86 rue Daguerre",
		field.AddressZipcode:     "75014",
		field.AddressCity:        "Paris",
		field.AddressCountry:     "France",
		field.AcquisitionSource:  "word_of_mouth",
		field.AddressStateRegion: "Île-de-France",
	}
}

func validWork() map[string]string {
	return map[string]string{
		field.TitleEN:        "The Gleaners",
		field.Language:       "French",
		field.SynopsisEN:     "People who gather what others leave behind.",
		field.TechResume:     "Shot on a handheld camera.",
		field.CreativeResume: "An essay on waste and abundance.",
		field.Classification: "hybrid",
	}
}

func completeStep1(t *testing.T, c *Controller) {
	t.Helper()
	set(t, c, validIdentity())
	require.NoError(t, c.SetFlag(field.AgeVerified, true))
	require.NoError(t, c.Next())
}

func completeStep2(t *testing.T, c *Controller) {
	t.Helper()
	set(t, c, validWork())
	require.NoError(t, c.Next())
}

func attachRequiredMedia(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.AttachFile(ctx, field.Video, media.NewMemoryFile("film.mp4", "video/mp4", []byte("v"))))
	require.NoError(t, c.AttachFile(ctx, field.Cover, media.NewMemoryFile("cover.png", "image/png", []byte("c"))))
	require.NoError(t, c.SetFlag(field.RightsAccepted, true))
}

func readyToSubmit(t *testing.T, env *testEnv) {
	t.Helper()
	completeStep1(t, env.c)
	completeStep2(t, env.c)
	attachRequiredMedia(t, env.c)
	require.NoError(t, env.c.SetVerificationToken("tok-123"))
}
