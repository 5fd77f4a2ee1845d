package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
	"github.com/consensuslabs/festival/backend/internal/logger"
)

// DefaultTokenTTL is how long a verification response stays usable.
const DefaultTokenTTL = 5 * time.Minute

// Config wires the controller's collaborators. Zero values are replaced by
// defaults in New.
type Config struct {
	Checker  *media.Checker
	Previews media.PreviewFactory
	TokenTTL time.Duration
	Now      func() time.Time
	Logger   logger.Logger
}

// Controller owns one draft and the state machine around it. It is safe
// for concurrent use.
type Controller struct {
	mu       sync.Mutex
	draft    Draft
	step     Step
	errors   map[string]string
	banner   string
	inFlight bool
	closed   bool
	receipt  *Receipt

	checker  *media.Checker
	previews media.PreviewFactory
	tokenTTL time.Duration
	now      func() time.Time
	logger   logger.Logger
}

// New creates a controller positioned on the first step with an empty draft.
func New(cfg Config) *Controller {
	if cfg.Checker == nil {
		cfg.Checker = media.NewChecker(media.DefaultLimits(), nil)
	}
	if cfg.Previews == nil {
		cfg.Previews = media.NopPreviews()
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Controller{
		step:     Step1,
		errors:   make(map[string]string),
		checker:  cfg.Checker,
		previews: cfg.Previews,
		tokenTTL: cfg.TokenTTL,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
}

// Step returns the current step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Draft returns a copy of the draft as entered.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.clone()
}

// Errors returns a copy of the current field error map.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Banner returns the submission-level message of the last failed submit.
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// Receipt returns the server receipt once the draft is submitted.
func (c *Controller) Receipt() *Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receipt
}

// InFlight reports whether a submission is outstanding.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) editable() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.step == Submitted:
		return ErrAlreadySubmitted
	case c.inFlight:
		return ErrSubmissionInFlight
	}
	return nil
}

// SetField stores raw for a text field and re-validates it with its
// dependents.
func (c *Controller) SetField(path, raw string) error {
	s, ok := registry[path]
	if !ok || s.set == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	s.set(&c.draft, raw)
	c.revalidate(path)
	return nil
}

// SetFlag stores a boolean field. The collection toggles can only be turned
// off here; turning them on goes through OpenContributors and
// OpenSocialNetworks.
func (c *Controller) SetFlag(path string, v bool) error {
	s, ok := registry[path]
	if !ok || s.flag == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if v && (path == field.HasContributors || path == field.HasSocialNetworks) {
		return ErrEditorRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	s.flag(&c.draft, v)
	c.revalidate(path)
	return nil
}

// SetAcquisition replaces the whole acquisition answer, e.g. with a value
// decoded from a stored submission.
func (c *Controller) SetAcquisition(src normalize.AcquisitionSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	c.draft.Identity.Acquisition = src
	c.revalidate(field.AcquisitionSource)
	return nil
}

// AddTag normalizes raw and appends it. Invalid, duplicate and surplus tags
// are rejected without touching the list.
func (c *Controller) AddTag(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}

	tag := normalize.Tag(raw)
	msg := field.TagRule(tag)
	if msg == "" {
		for _, existing := range c.draft.Work.Tags {
			if existing == tag {
				msg = "tag already added"
				break
			}
		}
	}
	if msg == "" && len(c.draft.Work.Tags) >= field.MaxTags {
		msg = fmt.Sprintf("at most %d tags are allowed", field.MaxTags)
	}
	if msg != "" {
		c.errors[field.Tags] = msg
		return apperrors.NewValidationError(field.Tags, msg)
	}

	c.draft.Work.Tags = append(c.draft.Work.Tags, tag)
	c.revalidate(field.Tags)
	return nil
}

// RemoveTag removes the tag matching raw once normalized.
func (c *Controller) RemoveTag(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}

	tag := normalize.Tag(raw)
	for i, existing := range c.draft.Work.Tags {
		if existing == tag {
			c.draft.Work.Tags = append(c.draft.Work.Tags[:i:i], c.draft.Work.Tags[i+1:]...)
			c.revalidate(field.Tags)
			return nil
		}
	}
	return fmt.Errorf("%w: tag %q", ErrNoSuchEntry, tag)
}

// SetVerificationToken records a human verification response. An empty
// value clears it.
func (c *Controller) SetVerificationToken(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	c.draft.Consent.Verification = VerificationToken{Value: value, ObtainedAt: c.now(), TTL: c.tokenTTL}
	delete(c.errors, field.VerificationToken)
	return nil
}

// Next validates every field of the current step and advances when none
// fails. On failure the step is unchanged and the failures are returned as
// apperrors.ValidationErrors.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.step != Step1 && c.step != Step2 {
		return ErrNoNextStep
	}

	if errs := c.validateStep(c.step); len(errs) > 0 {
		c.logger.LogDebug("Step validation failed", map[string]interface{}{
			"step":   c.step.String(),
			"fields": len(errs),
		})
		return errs
	}

	c.step++
	return nil
}

// Back moves to the previous step without validating.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return ErrClosed
	case c.step == Submitted:
		return ErrAlreadySubmitted
	case c.inFlight:
		return ErrSubmissionInFlight
	case c.step == Step1:
		return ErrNoPreviousStep
	}
	c.step--
	return nil
}

// Submit validates the final step, checks the verification token and hands
// the normalized draft to s. Only one submission may be outstanding. On
// failure the controller stays on the final step with a banner; server
// field errors are merged into the error map.
func (c *Controller) Submit(ctx context.Context, s Submitter) (*Receipt, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return nil, ErrClosed
	case c.step == Submitted:
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	case c.inFlight:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case c.step != Step3:
		c.mu.Unlock()
		return nil, ErrNotOnFinalStep
	}

	if errs := c.validateStep(Step3); len(errs) > 0 {
		c.mu.Unlock()
		return nil, errs
	}
	if err := c.draft.Consent.Verification.Check(c.now()); err != nil {
		c.errors[field.VerificationToken] = err.Error()
		c.banner = err.Error()
		c.mu.Unlock()
		return nil, err
	}

	c.inFlight = true
	c.banner = ""
	snapshot := c.draft.Normalized()
	c.mu.Unlock()

	receipt, err := s.Submit(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err == nil {
		c.step = Submitted
		c.receipt = receipt
		c.logger.LogInfo("Submission accepted", map[string]interface{}{
			"id": receiptID(receipt),
		})
		return receipt, nil
	}

	var verrs apperrors.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		for _, v := range verrs {
			c.errors[v.Field] = v.Message
		}
		first, _ := verrs.First(field.Video)
		c.banner = first.Message
		// The server consumed the verification response.
		c.draft.Consent.Verification = VerificationToken{}
		return nil, err
	}

	c.banner = err.Error()
	c.logger.LogWarn("Submission failed", map[string]interface{}{
		"error": err.Error(),
	})
	return nil, fmt.Errorf("submit: %w", err)
}

// Close releases every preview held by the draft. Further mutations fail
// with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	m := &c.draft.Media
	release(m.Video)
	release(m.Cover)
	release(m.Subtitle)
	for _, a := range m.Stills {
		release(a)
	}
}

func release(a *Attachment) {
	if a != nil && a.Preview != nil {
		a.Preview.Release()
	}
}

func receiptID(r *Receipt) string {
	if r == nil {
		return ""
	}
	return r.ID
}

// revalidate runs the validator of path and of its dependents against the
// normalized draft, updating only those entries of the error map.
func (c *Controller) revalidate(path string) {
	n := c.draft.Normalized()
	c.apply(&n, path)
	for _, dep := range dependents[path] {
		c.apply(&n, dep)
	}
}

func (c *Controller) apply(n *Draft, path string) string {
	s, ok := registry[path]
	if !ok {
		return ""
	}
	msg := s.validate(n)
	if msg == "" {
		delete(c.errors, path)
	} else {
		c.errors[path] = msg
	}
	return msg
}

func (c *Controller) validateStep(step Step) apperrors.ValidationErrors {
	n := c.draft.Normalized()
	failed := make(map[string]string)
	for _, path := range stepFields[step] {
		if msg := c.apply(&n, path); msg != "" {
			failed[path] = msg
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return apperrors.FromMap(failed)
}
