package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// DeviceHeader carries the optional device identifier.
const DeviceHeader = "X-Device-Id"

var (
	ErrVerificationRejected = errors.New("human verification was rejected, please verify again")
	ErrEditTokenInvalid     = errors.New("edit link is invalid")
	ErrEditTokenExpired     = errors.New("edit link has expired")
	ErrEditTokenUsed        = errors.New("edit link was already used")
)

// DeviceSource yields the device identifier when one is known.
type DeviceSource interface {
	DeviceID() (string, bool)
}

// DeviceFunc adapts a function to DeviceSource.
type DeviceFunc func() (string, bool)

func (f DeviceFunc) DeviceID() (string, bool) { return f() }

// StaticDevice always returns id; an empty id means no device.
func StaticDevice(id string) DeviceSource {
	return DeviceFunc(func() (string, bool) { return id, strings.TrimSpace(id) != "" })
}

// envelope mirrors the API response shape.
type envelope struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Data    json.RawMessage            `json:"data,omitempty"`
	Error   *apiError                  `json:"error,omitempty"`
	Errors  apperrors.ValidationErrors `json:"errors,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError is an unexpected API response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected response"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, status %d)", msg, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// StoredFile describes a file kept by the server.
type StoredFile struct {
	Role        string `json:"role"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Contributor is the wire form of a contributor.
type Contributor struct {
	Gender         string `json:"gender"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	ProductionRole string `json:"productionRole"`
}

// Submission is a stored submission as returned by the edit endpoint.
type Submission struct {
	ID                     string                 `json:"id"`
	Status                 string                 `json:"status"`
	Gender                 string                 `json:"gender"`
	FirstName              string                 `json:"firstName"`
	LastName               string                 `json:"lastName"`
	Email                  string                 `json:"email"`
	Country                string                 `json:"country"`
	PhoneNumber            string                 `json:"phoneNumber,omitempty"`
	MobileNumber           string                 `json:"mobileNumber"`
	Address                string                 `json:"address"`
	AddressParts           normalize.AddressParts `json:"addressParts"`
	AcquisitionSource      string                 `json:"acquisitionSource"`
	AcquisitionSourceOther string                 `json:"acquisitionSourceOther,omitempty"`
	AgeVerified            bool                   `json:"ageVerified"`
	Contributors           []Contributor          `json:"contributors"`
	SocialNetworks         map[string]string      `json:"socialNetworks"`
	Title                  string                 `json:"title,omitempty"`
	TitleEN                string                 `json:"titleEN"`
	Language               string                 `json:"language"`
	Synopsis               string                 `json:"synopsis,omitempty"`
	SynopsisEN             string                 `json:"synopsisEN"`
	TechResume             string                 `json:"techResume"`
	CreativeResume         string                 `json:"creativeResume"`
	Classification         string                 `json:"classification"`
	Tags                   []string               `json:"tags"`
	RightsAccepted         bool                   `json:"rightsAccepted"`
	NewsletterOptIn        bool                   `json:"newsletterOptIn"`
	DurationSeconds        float64                `json:"durationSeconds"`
	Files                  []StoredFile           `json:"files"`
	CreatedAt              time.Time              `json:"createdAt"`
	UpdatedAt              time.Time              `json:"updatedAt"`
}
