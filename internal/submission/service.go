package submission

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"

	"github.com/consensuslabs/festival/backend/internal/captcha"
	"github.com/consensuslabs/festival/backend/internal/edittoken"
	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/consensuslabs/festival/backend/internal/storage"
	"github.com/consensuslabs/festival/backend/internal/tempfile"
	"github.com/consensuslabs/festival/backend/internal/video"
	"github.com/google/uuid"
)

// DurationChecker reads the authoritative duration of a staged video.
type DurationChecker interface {
	Check(ctx context.Context, path string) video.DurationCheck
}

// TokenService validates and consumes edit tokens.
type TokenService interface {
	Validate(ctx context.Context, token string) (*edittoken.EditToken, error)
	Consume(ctx context.Context, token string) (*edittoken.EditToken, error)
}

// Request is one submission body with its transport metadata.
type Request struct {
	Form     *multipart.Form
	RemoteIP string
	DeviceID string
}

// Receipt acknowledges a stored submission.
type Receipt struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Dependencies wires a Service.
type Dependencies struct {
	Repository Repository
	Verifier   captcha.Verifier
	Checker    *media.Checker
	Durations  DurationChecker
	Stager     tempfile.Stager
	Store      storage.ObjectStore
	Tokens     TokenService
	Logger     logger.Logger
}

// Service accepts, loads and amends submissions.
type Service struct {
	repo      Repository
	verifier  captcha.Verifier
	checker   *media.Checker
	durations DurationChecker
	stager    tempfile.Stager
	store     storage.ObjectStore
	tokens    TokenService
	logger    logger.Logger
}

// NewService creates a submission service.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Repository == nil:
		return nil, errors.New("submission repository is required")
	case deps.Verifier == nil:
		return nil, errors.New("verifier is required")
	case deps.Checker == nil:
		return nil, errors.New("media checker is required")
	case deps.Durations == nil:
		return nil, errors.New("duration checker is required")
	case deps.Stager == nil:
		return nil, errors.New("stager is required")
	case deps.Store == nil:
		return nil, errors.New("object store is required")
	case deps.Tokens == nil:
		return nil, errors.New("edit token service is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:      deps.Repository,
		verifier:  deps.Verifier,
		checker:   deps.Checker,
		durations: deps.Durations,
		stager:    deps.Stager,
		store:     deps.Store,
		tokens:    deps.Tokens,
		logger:    log,
	}, nil
}

// Create verifies, validates and stores a new submission. Field failures
// are returned as apperrors.ValidationErrors.
func (s *Service) Create(ctx context.Context, req Request) (*Receipt, error) {
	form, decodeErrs := DecodeForm(req.Form)

	if err := s.verify(ctx, form, req.RemoteIP); err != nil {
		return nil, err
	}
	if errs := validate(form, decodeErrs, s.checker, true); len(errs) > 0 {
		return nil, errs
	}

	sub := fromDraft(form.Draft)
	sub.ID = uuid.New()
	sub.Status = StatusPending
	sub.DeviceID = req.DeviceID

	files, duration, err := s.processUploads(ctx, sub.ID, form.Uploads)
	if err != nil {
		return nil, err
	}
	sub.Files = files
	sub.DurationSeconds = duration

	if err := s.repo.Create(ctx, &sub); err != nil {
		s.removeObjects(files)
		return nil, apperrors.NewStorageError("failed to save submission", err)
	}

	s.logger.LogInfo("Submission stored", map[string]interface{}{
		"submissionID": sub.ID.String(),
		"files":        len(files),
		"duration":     duration,
	})
	return &Receipt{ID: sub.ID.String(), Status: sub.Status}, nil
}

// OpenEdit returns the submission behind an unused edit token.
func (s *Service) OpenEdit(ctx context.Context, token string) (*Submission, error) {
	record, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, record.SubmissionID)
}

// Amend replaces the metadata of the submission behind token and any file
// role present in the request. The token is consumed on success.
func (s *Service) Amend(ctx context.Context, token string, req Request) (*Receipt, error) {
	record, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	form, decodeErrs := DecodeForm(req.Form)
	if err := s.verify(ctx, form, req.RemoteIP); err != nil {
		return nil, err
	}
	if errs := validate(form, decodeErrs, s.checker, false); len(errs) > 0 {
		return nil, errs
	}

	existing, err := s.repo.GetByID(ctx, record.SubmissionID)
	if err != nil {
		return nil, err
	}

	files, duration, err := s.processUploads(ctx, existing.ID, form.Uploads)
	if err != nil {
		return nil, err
	}

	if _, err := s.tokens.Consume(ctx, token); err != nil {
		s.removeObjects(files)
		return nil, err
	}

	updated := fromDraft(form.Draft)
	updated.ID = existing.ID
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt
	updated.DeviceID = existing.DeviceID
	updated.DurationSeconds = existing.DurationSeconds
	if duration > 0 {
		updated.DurationSeconds = duration
	}
	if req.DeviceID != "" {
		updated.DeviceID = req.DeviceID
	}

	removed, err := s.repo.Update(ctx, &updated, files)
	if err != nil {
		s.removeObjects(files)
		return nil, apperrors.NewStorageError("failed to update submission", err)
	}
	s.removeObjects(removed)

	s.logger.LogInfo("Submission amended", map[string]interface{}{
		"submissionID":  existing.ID.String(),
		"replacedFiles": len(removed),
	})
	return &Receipt{ID: existing.ID.String(), Status: updated.Status}, nil
}

func (s *Service) verify(ctx context.Context, form *Form, remoteIP string) error {
	if err := s.verifier.Verify(ctx, form.VerificationToken(), remoteIP); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.LogWarn("Human verification failed", map[string]interface{}{
			"error":    err.Error(),
			"remoteIP": remoteIP,
		})
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	return nil
}

type stagedUpload struct {
	upload Upload
	path   string
	size   int64
}

// processUploads stages every upload, probes the video and stores the
// files. Nothing is stored unless every file passes.
func (s *Service) processUploads(ctx context.Context, id uuid.UUID, uploads []Upload) ([]File, float64, error) {
	if len(uploads) == 0 {
		return nil, 0, nil
	}

	dir, err := s.stager.CreateTempDir()
	if err != nil {
		return nil, 0, apperrors.NewStorageError("failed to stage uploads", err)
	}
	defer func() {
		if err := s.stager.CleanupDir(dir); err != nil {
			s.logger.LogError(err, "Failed to remove staging directory")
		}
	}()

	failed := make(map[string]string)
	staged := make([]stagedUpload, 0, len(uploads))
	var duration float64
	for _, u := range uploads {
		path, n, err := s.stage(dir, u)
		if err != nil {
			if errors.Is(err, tempfile.ErrTooLarge) {
				failed[u.Field] = "file exceeds the size limit"
				continue
			}
			return nil, 0, apperrors.NewStorageError("failed to stage "+u.Field, err)
		}
		if n == 0 {
			failed[u.Field] = "file is empty"
			continue
		}

		if u.Role == media.RoleVideo {
			check := s.durations.Check(ctx, path)
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			if !check.Valid {
				s.logger.LogWarn("Video rejected", map[string]interface{}{
					"reason":   check.Reason,
					"duration": check.Duration,
				})
				failed[u.Field] = check.Error
				continue
			}
			duration = check.Duration
		}
		staged = append(staged, stagedUpload{upload: u, path: path, size: n})
	}
	if len(failed) > 0 {
		return nil, 0, apperrors.FromMap(failed)
	}

	files := make([]File, 0, len(staged))
	positions := make(map[string]int)
	for _, st := range staged {
		u := st.upload
		contentType := media.CanonicalType(u.Name(), u.ContentType())
		key := storage.SubmissionKey(id.String(), u.Field, uuid.NewString()[:8]+"-"+u.Name())

		obj, err := s.store.PutFile(ctx, key, st.path, contentType)
		if err != nil {
			s.removeObjects(files)
			return nil, 0, apperrors.NewStorageError("failed to store "+u.Field, err)
		}
		files = append(files, File{
			SubmissionID: id,
			Role:         u.Field,
			Position:     positions[u.Field],
			FileName:     u.Name(),
			ContentType:  contentType,
			Size:         st.size,
			StorageKey:   obj.Key,
			Location:     obj.Location,
		})
		positions[u.Field]++
	}
	return files, duration, nil
}

func (s *Service) stage(dir string, u Upload) (string, int64, error) {
	r, err := u.Open()
	if err != nil {
		return "", 0, err
	}
	defer r.Close()
	return s.stager.Save(dir, u.Name(), r, s.checker.Limits().MaxBytes(u.Role))
}

// removeObjects deletes stored objects whose database rows are gone or
// were never written. Failures are logged only.
func (s *Service) removeObjects(files []File) {
	for _, f := range files {
		if err := s.store.Remove(context.Background(), f.StorageKey); err != nil {
			s.logger.LogErrorf(err, "Failed to remove stored object %s", f.StorageKey)
		}
	}
}

// fromDraft maps the normalized draft onto a Submission row.
func fromDraft(d draft.Draft) Submission {
	n := d.Normalized()
	id, w := n.Identity, n.Work
	source, other := normalize.EncodeAcquisition(id.Acquisition)

	sub := Submission{
		Gender:                 id.Gender,
		FirstName:              id.FirstName,
		LastName:               id.LastName,
		Email:                  id.Email,
		Country:                id.Country,
		PhoneNumber:            id.PhoneNumber,
		MobileNumber:           id.MobileNumber,
		Address:                normalize.ComposeAddress(id.Address),
		Street:                 id.Address.Street,
		Street2:                id.Address.Street2,
		Zipcode:                id.Address.Zipcode,
		City:                   id.Address.City,
		StateRegion:            id.Address.StateRegion,
		AddressCountry:         id.Address.Country,
		AcquisitionSource:      source,
		AcquisitionSourceOther: other,
		AgeVerified:            id.AgeVerified,
		Title:                  w.Title,
		TitleEN:                w.TitleEN,
		Language:               w.Language,
		Synopsis:               w.Synopsis,
		SynopsisEN:             w.SynopsisEN,
		TechResume:             w.TechResume,
		CreativeResume:         w.CreativeResume,
		Classification:         w.Classification,
		RightsAccepted:         n.Consent.RightsAccepted,
		NewsletterOptIn:        n.Consent.NewsletterOptIn,
	}

	for i, c := range id.Contributors.Items() {
		sub.Contributors = append(sub.Contributors, Contributor{
			Position:       i,
			Gender:         c.Gender,
			FirstName:      c.FirstName,
			LastName:       c.LastName,
			Email:          c.Email,
			ProductionRole: c.ProductionRole,
		})
	}

	socials := id.SocialNetworks.Map()
	platforms := make([]string, 0, len(socials))
	for p := range socials {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	for _, p := range platforms {
		sub.SocialNetworks = append(sub.SocialNetworks, SocialNetwork{Platform: p, URL: socials[p]})
	}

	for i, t := range w.Tags {
		sub.Tags = append(sub.Tags, Tag{Position: i, Value: t})
	}
	return sub
}
