package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/consensuslabs/festival/backend/internal/captcha"
	"github.com/consensuslabs/festival/backend/internal/edittoken"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/storage"
	"github.com/consensuslabs/festival/backend/internal/tempfile"
	"github.com/consensuslabs/festival/backend/internal/video"
	"github.com/consensuslabs/festival/backend/testhelper"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	key         string
	name        string
	contentType string
	data        []byte
}

func videoFile() testFile {
	return testFile{key: field.Video, name: "film.mp4", contentType: "video/mp4", data: []byte("video-bytes")}
}

func coverFile() testFile {
	return testFile{key: field.Cover, name: "cover.png", contentType: "image/png", data: []byte("cover-bytes")}
}

func stillFile(name string) testFile {
	return testFile{key: field.Stills + "[]", name: name, contentType: "image/jpeg", data: []byte("still-" + name)}
}

func validValues() map[string][]string {
	return map[string][]string{
		field.Gender:             {"female"},
		field.FirstName:          {"  Agnès "},
		field.LastName:           {"Varda"},
		field.Email:              {"Agnes@Example.com"},
		field.Country:            {"France"},
		field.MobileNumber:       {"+33 6 12 34 56 78"},
		field.Address:            {"86 rue Daguerre, Paris, 75014, France"},
		field.AddressStreet:      {"86 rue Daguerre"},
		field.AddressZipcode:     {"75014"},
		field.AddressCity:        {"Paris"},
		field.AddressCountry:     {"France"},
		field.AcquisitionSource:  {"word_of_mouth"},
		field.AgeVerified:        {"true"},
		field.TitleEN:            {"The Gleaners"},
		field.Language:           {"French"},
		field.SynopsisEN:         {"People who gather what others leave behind."},
		field.TechResume:         {"Shot on a handheld camera."},
		field.CreativeResume:     {"An essay on waste and abundance."},
		field.Classification:     {"hybrid"},
		field.Tags + "[]":        {"Documentary", "documentary", "food"},
		field.RightsAccepted:     {"true"},
		field.VerificationToken:  {"tok-1"},
	}
}

func with(values map[string][]string, key string, v ...string) map[string][]string {
	out := make(map[string][]string, len(values)+1)
	for k, vs := range values {
		out[k] = vs
	}
	if len(v) == 0 {
		delete(out, key)
	} else {
		out[key] = v
	}
	return out
}

func multipartBody(t *testing.T, values map[string][]string, files []testFile) (string, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.key, f.name))
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), buf
}

func parseForm(t *testing.T, values map[string][]string, files ...testFile) *multipart.Form {
	t.Helper()
	contentType, body := multipartBody(t, values, files)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

type fakeVerifier struct {
	err    error
	tokens []string
}

func (v *fakeVerifier) Verify(_ context.Context, token, _ string) error {
	v.tokens = append(v.tokens, token)
	if token == "" {
		return captcha.ErrMissingToken
	}
	return v.err
}

type fakeDurations struct {
	check video.DurationCheck
	paths []string
}

func (d *fakeDurations) Check(_ context.Context, path string) video.DurationCheck {
	d.paths = append(d.paths, path)
	return d.check
}

// memoryStore keeps stored objects in memory. failAfter > 0 makes the
// put with that count fail.
type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	removed   []string
	puts      int
	failAfter int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStore) PutFile(_ context.Context, key, filePath, contentType string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failAfter > 0 && s.puts >= s.failAfter {
		return nil, errors.New("bucket unavailable")
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return &storage.Object{Key: key, Size: int64(len(data)), Location: "mem://" + key}, nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	return out
}

type testEnv struct {
	svc       *Service
	repo      *GormRepository
	tokens    *edittoken.Service
	verifier  *fakeVerifier
	durations *fakeDurations
	store     *memoryStore
	stager    *tempfile.Manager
	log       *testhelper.TestLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	require.NoError(t, db.AutoMigrate(append(Models(), &edittoken.EditToken{})...))

	log := testhelper.NewTestLogger(false)
	tokens, err := edittoken.NewService(db, &edittoken.Config{Secret: "test-secret", TTL: time.Hour}, log)
	require.NoError(t, err)
	stager, err := tempfile.NewManager(&tempfile.Config{BaseDir: filepath.Join(t.TempDir(), "staging")}, log)
	require.NoError(t, err)

	env := &testEnv{
		repo:      NewRepository(db),
		tokens:    tokens,
		verifier:  &fakeVerifier{},
		durations: &fakeDurations{check: video.DurationCheck{Valid: true, Duration: 120, MaxDuration: 150}},
		store:     newMemoryStore(),
		stager:    stager,
		log:       log,
	}
	env.svc, err = NewService(Dependencies{
		Repository: env.repo,
		Verifier:   env.verifier,
		Checker:    media.NewChecker(media.DefaultLimits(), nil),
		Durations:  env.durations,
		Stager:     env.stager,
		Store:      env.store,
		Tokens:     env.tokens,
		Logger:     log,
	})
	require.NoError(t, err)
	return env
}

func (e *testEnv) create(t *testing.T, files ...testFile) *Receipt {
	t.Helper()
	if len(files) == 0 {
		files = []testFile{videoFile(), coverFile()}
	}
	receipt, err := e.svc.Create(context.Background(), Request{Form: parseForm(t, validValues(), files...), DeviceID: "device-1"})
	require.NoError(t, err)
	return receipt
}
