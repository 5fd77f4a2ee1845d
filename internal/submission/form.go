package submission

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// fileFields maps the multipart file keys to their media roles.
var fileFields = []struct {
	key      string
	role     media.Role
	multiple bool
}{
	{field.Video, media.RoleVideo, false},
	{field.Cover, media.RoleCover, false},
	{field.Stills, media.RoleStill, true},
	{field.Subtitle, media.RoleSubtitle, false},
}

// Upload is one received file part. It satisfies media.File with the
// client-declared content type.
type Upload struct {
	Field  string
	Role   media.Role
	Header *multipart.FileHeader
}

func (u Upload) Name() string { return u.Header.Filename }

func (u Upload) Size() int64 { return u.Header.Size }

func (u Upload) ContentType() string { return u.Header.Header.Get("Content-Type") }

func (u Upload) Open() (io.ReadCloser, error) { return u.Header.Open() }

// Form is a decoded submission body.
type Form struct {
	Draft   draft.Draft
	Uploads []Upload
}

// VerificationToken returns the human verification token of the form.
func (f *Form) VerificationToken() string {
	return f.Draft.Consent.Verification.Value
}

// DecodeForm reads a multipart submission. Array fields are accepted both
// as "key[]" and as repeated "key". The returned errors describe values
// that could not be decoded at all; rule checks happen later.
func DecodeForm(mf *multipart.Form) (*Form, map[string]string) {
	errs := make(map[string]string)
	value := func(key string) string {
		if vs := mf.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	flag := func(key string) bool {
		switch strings.ToLower(strings.TrimSpace(value(key))) {
		case "true", "1", "on", "yes":
			return true
		}
		return false
	}

	var d draft.Draft
	id := &d.Identity
	id.Gender = value(field.Gender)
	id.FirstName = value(field.FirstName)
	id.LastName = value(field.LastName)
	id.Email = value(field.Email)
	id.Country = value(field.Country)
	id.PhoneNumber = value(field.PhoneNumber)
	id.MobileNumber = value(field.MobileNumber)
	id.Address = normalize.AddressParts{
		Street:      value(field.AddressStreet),
		Street2:     value(field.AddressStreet2),
		Zipcode:     value(field.AddressZipcode),
		City:        value(field.AddressCity),
		StateRegion: value(field.AddressStateRegion),
		Country:     value(field.AddressCountry),
	}
	id.Acquisition = normalize.DecodeAcquisition(value(field.AcquisitionSource), value(field.AcquisitionSourceOther))
	id.AgeVerified = flag(field.AgeVerified)

	if raw := strings.TrimSpace(value(field.Contributors)); raw != "" {
		var items []draft.Contributor
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			errs[field.Contributors] = "contributors must be a JSON array"
		} else {
			id.Contributors = draft.NewContributors(items...)
		}
	}
	if flag(field.HasContributors) && id.Contributors.Len() == 0 && errs[field.Contributors] == "" {
		errs[field.Contributors] = "add at least one contributor"
	}

	if raw := strings.TrimSpace(value(field.SocialNetworks)); raw != "" {
		var urls map[string]string
		if err := json.Unmarshal([]byte(raw), &urls); err != nil {
			errs[field.SocialNetworks] = "social networks must be a JSON object"
		} else {
			byPlatform := make(map[field.Platform]string, len(urls))
			for p, u := range urls {
				byPlatform[field.Platform(strings.ToLower(strings.TrimSpace(p)))] = u
			}
			id.SocialNetworks = draft.NewSocialNetworks(byPlatform)
		}
	}
	if flag(field.HasSocialNetworks) && id.SocialNetworks.Len() == 0 && errs[field.SocialNetworks] == "" {
		errs[field.SocialNetworks] = "add at least one social network"
	}

	w := &d.Work
	w.Title = value(field.Title)
	w.TitleEN = value(field.TitleEN)
	w.Language = value(field.Language)
	w.Synopsis = value(field.Synopsis)
	w.SynopsisEN = value(field.SynopsisEN)
	w.TechResume = value(field.TechResume)
	w.CreativeResume = value(field.CreativeResume)
	w.Classification = value(field.Classification)
	w.Tags = normalize.Tags(append(append([]string(nil), mf.Value[field.Tags+"[]"]...), mf.Value[field.Tags]...))

	d.Consent.RightsAccepted = flag(field.RightsAccepted)
	d.Consent.NewsletterOptIn = flag(field.NewsletterOptIn)
	d.Consent.Verification.Value = strings.TrimSpace(value(field.VerificationToken))

	form := &Form{Draft: d}
	for _, ff := range fileFields {
		headers := append(append([]*multipart.FileHeader(nil), mf.File[ff.key]...), mf.File[ff.key+"[]"]...)
		if len(headers) > 1 && !ff.multiple {
			errs[ff.key] = "only one file is allowed"
			headers = headers[:1]
		}
		for _, h := range headers {
			u := Upload{Field: ff.key, Role: ff.role, Header: h}
			form.Uploads = append(form.Uploads, u)
			attachment := &draft.Attachment{File: u}
			switch ff.role {
			case media.RoleVideo:
				form.Draft.Media.Video = attachment
			case media.RoleCover:
				form.Draft.Media.Cover = attachment
			case media.RoleStill:
				form.Draft.Media.Stills = append(form.Draft.Media.Stills, attachment)
			case media.RoleSubtitle:
				form.Draft.Media.Subtitle = attachment
			}
		}
	}

	return form, errs
}

// validate merges decode errors, the field rules and the static media
// checks. Files are optional when requireMedia is false.
func validate(form *Form, decodeErrs map[string]string, checker *media.Checker, requireMedia bool) apperrors.ValidationErrors {
	failed := make(map[string]string)
	steps := []draft.Step{draft.Step1, draft.Step2}
	if requireMedia {
		steps = append(steps, draft.Step3)
	}
	for _, e := range draft.Validate(form.Draft, steps...) {
		failed[e.Field] = e.Message
	}
	if !requireMedia {
		if msg := field.MustBeTrue(form.Draft.Consent.RightsAccepted, "you must accept the rights and conditions"); msg != "" {
			failed[field.RightsAccepted] = msg
		}
	}

	stills := 0
	for _, u := range form.Uploads {
		if _, done := failed[u.Field]; done {
			continue
		}
		if u.Role == media.RoleStill {
			if err := checker.CheckStillCount(stills); err != nil {
				failed[u.Field] = constraintMessage(err)
				continue
			}
			stills++
		}
		if err := checker.CheckStatic(u.Role, u); err != nil {
			failed[u.Field] = constraintMessage(err)
		}
	}

	for k, v := range decodeErrs {
		failed[k] = v
	}
	if len(failed) == 0 {
		return nil
	}
	return apperrors.FromMap(failed)
}

func constraintMessage(err error) string {
	var ce *media.ConstraintError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
