package draft

import (
	"context"
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// Step is a position of the controller's state machine.
type Step int

const (
	Step1 Step = iota + 1
	Step2
	Step3
	Submitted
)

func (s Step) String() string {
	switch s {
	case Step1:
		return "identity"
	case Step2:
		return "work"
	case Step3:
		return "media"
	case Submitted:
		return "submitted"
	}
	return "unknown"
}

// Contributor is a member of the production credited on the submission.
type Contributor struct {
	Gender         string `json:"gender" yaml:"gender"`
	FirstName      string `json:"firstName" yaml:"firstName"`
	LastName       string `json:"lastName" yaml:"lastName"`
	Email          string `json:"email" yaml:"email"`
	ProductionRole string `json:"productionRole" yaml:"productionRole"`
}

// Normalized returns a copy with every value canonicalized.
func (c Contributor) Normalized() Contributor {
	return Contributor{
		Gender:         strings.ToLower(normalize.Text(c.Gender)),
		FirstName:      normalize.Text(c.FirstName),
		LastName:       normalize.Text(c.LastName),
		Email:          normalize.Email(c.Email),
		ProductionRole: normalize.Text(c.ProductionRole),
	}
}

// Validate runs the contributor field rules. Keys are relative to the
// contributor, e.g. "email".
func (c Contributor) Validate() map[string]string {
	errs := make(map[string]string)
	add := func(key, msg string) {
		if msg != "" {
			errs[key] = msg
		}
	}
	add(field.Gender, field.GenderRule(c.Gender))
	add(field.FirstName, field.FirstNameRule(c.FirstName))
	add(field.LastName, field.LastNameRule(c.LastName))
	add(field.Email, field.EmailRule(c.Email))
	add(field.ProductionRole, field.ProductionRoleRule(c.ProductionRole))
	return errs
}

// Contributors is the optional contributor collection. It is either
// disabled, or enabled with the entries added through the editor.
type Contributors struct {
	enabled bool
	items   []Contributor
}

// NewContributors returns an enabled collection when items is not empty and
// a disabled one otherwise.
func NewContributors(items ...Contributor) Contributors {
	if len(items) == 0 {
		return Contributors{}
	}
	return Contributors{enabled: true, items: append([]Contributor(nil), items...)}
}

// Enabled reports whether the submission declares contributors.
func (c Contributors) Enabled() bool { return c.enabled }

// Items returns a copy of the entries.
func (c Contributors) Items() []Contributor { return append([]Contributor(nil), c.items...) }

// Len returns the number of entries.
func (c Contributors) Len() int { return len(c.items) }

func (c Contributors) clone() Contributors {
	return Contributors{enabled: c.enabled, items: c.Items()}
}

// SocialNetworks is the optional map of platform profile URLs.
type SocialNetworks struct {
	enabled bool
	urls    map[field.Platform]string
}

// NewSocialNetworks returns an enabled collection holding the non-empty
// URLs of urls, or a disabled one when none remain.
func NewSocialNetworks(urls map[field.Platform]string) SocialNetworks {
	out := SocialNetworks{urls: make(map[field.Platform]string, len(urls))}
	for p, u := range urls {
		if u != "" {
			out.urls[p] = u
		}
	}
	out.enabled = len(out.urls) > 0
	return out
}

// Enabled reports whether the submission declares social networks.
func (s SocialNetworks) Enabled() bool { return s.enabled }

// URL returns the URL recorded for p.
func (s SocialNetworks) URL(p field.Platform) string { return s.urls[p] }

// Len returns the number of filled slots.
func (s SocialNetworks) Len() int { return len(s.urls) }

// Map returns the filled slots keyed by platform name.
func (s SocialNetworks) Map() map[string]string {
	out := make(map[string]string, len(s.urls))
	for p, u := range s.urls {
		out[string(p)] = u
	}
	return out
}

func (s SocialNetworks) clone() SocialNetworks {
	out := SocialNetworks{enabled: s.enabled, urls: make(map[field.Platform]string, len(s.urls))}
	for p, u := range s.urls {
		out.urls[p] = u
	}
	return out
}

// Identity is the first step of the draft.
type Identity struct {
	Gender         string
	FirstName      string
	LastName       string
	Email          string
	Country        string
	PhoneNumber    string
	MobileNumber   string
	Address        normalize.AddressParts
	Acquisition    normalize.AcquisitionSource
	AgeVerified    bool
	Contributors   Contributors
	SocialNetworks SocialNetworks
}

// ComposedAddress derives the single-line address from the parts.
func (i Identity) ComposedAddress() string {
	return normalize.ComposeAddress(i.Address)
}

// Work is the second step of the draft.
type Work struct {
	Title          string
	TitleEN        string
	Language       string
	Synopsis       string
	SynopsisEN     string
	TechResume     string
	CreativeResume string
	Classification string
	Tags           []string
}

// Attachment is a file accepted into the draft together with its preview.
type Attachment struct {
	File     media.File
	Preview  media.Preview
	Duration float64
}

// Media is the file part of the third step.
type Media struct {
	Video    *Attachment
	Cover    *Attachment
	Stills   []*Attachment
	Subtitle *Attachment
}

// DurationSeconds returns the client-side duration estimate of the video.
func (m Media) DurationSeconds() float64 {
	if m.Video == nil {
		return 0
	}
	return m.Video.Duration
}

// VerificationToken is the human verification response attached to the
// submission.
type VerificationToken struct {
	Value      string
	ObtainedAt time.Time
	TTL        time.Duration
}

// Check returns ErrVerificationMissing or ErrVerificationExpired when the
// token cannot be sent at now.
func (t VerificationToken) Check(now time.Time) error {
	if strings.TrimSpace(t.Value) == "" {
		return ErrVerificationMissing
	}
	if t.TTL > 0 && now.After(t.ObtainedAt.Add(t.TTL)) {
		return ErrVerificationExpired
	}
	return nil
}

// Consent is the consent part of the third step.
type Consent struct {
	RightsAccepted  bool
	NewsletterOptIn bool
	Verification    VerificationToken
}

// Draft is the whole in-progress submission.
type Draft struct {
	Identity Identity
	Work     Work
	Media    Media
	Consent  Consent
}

// Receipt is what the server returns for an accepted submission.
type Receipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Submitter delivers a normalized draft to the server.
type Submitter interface {
	Submit(ctx context.Context, d Draft) (*Receipt, error)
}
