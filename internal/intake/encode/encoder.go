// Package encode turns a finished draft into the multipart payload accepted
// by the submission endpoint.
package encode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// ArrayMode selects how multi-valued scalar fields are written.
type ArrayMode int

const (
	// ArrayBracketed writes every element under "<key>[]", so a single
	// element is still read back as an array.
	ArrayBracketed ArrayMode = iota
	// ArrayLegacyDuplicate writes every element under "<key>" and repeats a
	// lone element, for receivers that infer arrays from repeated keys.
	ArrayLegacyDuplicate
)

// ParseArrayMode maps a configuration value to an ArrayMode.
func ParseArrayMode(s string) (ArrayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bracketed":
		return ArrayBracketed, nil
	case "legacy", "legacy_duplicate":
		return ArrayLegacyDuplicate, nil
	}
	return 0, fmt.Errorf("unknown array mode %q", s)
}

// Field is one text part of the payload.
type Field struct {
	Key   string
	Value string
}

// FilePart is one file part of the payload.
type FilePart struct {
	Key         string
	FileName    string
	ContentType string
	File        media.File
}

// Plan is the ordered content of a payload.
type Plan struct {
	Fields []Field
	Files  []FilePart
}

// Values returns every value written under key, in order.
func (p *Plan) Values(key string) []string {
	var out []string
	for _, f := range p.Fields {
		if f.Key == key {
			out = append(out, f.Value)
		}
	}
	return out
}

// Options configures an Encoder.
type Options struct {
	ArrayMode ArrayMode
	Now       func() time.Time
}

// Encoder builds submission payloads.
type Encoder struct {
	mode ArrayMode
	now  func() time.Time
}

// New creates an Encoder.
func New(opts Options) *Encoder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Encoder{mode: opts.ArrayMode, now: opts.Now}
}

// Plan normalizes d and lays out its parts. It fails with
// draft.ErrVerificationMissing or draft.ErrVerificationExpired before
// looking at anything else.
func (e *Encoder) Plan(d draft.Draft) (*Plan, error) {
	if err := d.Consent.Verification.Check(e.now()); err != nil {
		return nil, err
	}

	n := d.Normalized()
	p := &Plan{}
	add := func(key, value string) {
		if value != "" {
			p.Fields = append(p.Fields, Field{Key: key, Value: value})
		}
	}
	flag := func(key string, v bool) {
		if v {
			p.Fields = append(p.Fields, Field{Key: key, Value: "true"})
		}
	}

	id := n.Identity
	add(field.Gender, id.Gender)
	add(field.FirstName, id.FirstName)
	add(field.LastName, id.LastName)
	add(field.Email, id.Email)
	add(field.Country, id.Country)
	add(field.PhoneNumber, id.PhoneNumber)
	add(field.MobileNumber, id.MobileNumber)
	add(field.Address, normalize.ComposeAddress(id.Address))
	add(field.AddressStreet, id.Address.Street)
	add(field.AddressStreet2, id.Address.Street2)
	add(field.AddressZipcode, id.Address.Zipcode)
	add(field.AddressCity, id.Address.City)
	add(field.AddressStateRegion, id.Address.StateRegion)
	add(field.AddressCountry, id.Address.Country)

	source, other := normalize.EncodeAcquisition(id.Acquisition)
	add(field.AcquisitionSource, source)
	add(field.AcquisitionSourceOther, other)
	flag(field.AgeVerified, id.AgeVerified)

	if id.Contributors.Enabled() {
		raw, err := json.Marshal(id.Contributors.Items())
		if err != nil {
			return nil, fmt.Errorf("encode contributors: %w", err)
		}
		flag(field.HasContributors, true)
		add(field.Contributors, string(raw))
	}
	if id.SocialNetworks.Enabled() {
		raw, err := json.Marshal(id.SocialNetworks.Map())
		if err != nil {
			return nil, fmt.Errorf("encode social networks: %w", err)
		}
		flag(field.HasSocialNetworks, true)
		add(field.SocialNetworks, string(raw))
	}

	w := n.Work
	add(field.Title, w.Title)
	add(field.TitleEN, w.TitleEN)
	add(field.Language, w.Language)
	add(field.Synopsis, w.Synopsis)
	add(field.SynopsisEN, w.SynopsisEN)
	add(field.TechResume, w.TechResume)
	add(field.CreativeResume, w.CreativeResume)
	add(field.Classification, w.Classification)
	e.array(p, field.Tags, w.Tags)

	flag(field.RightsAccepted, n.Consent.RightsAccepted)
	flag(field.NewsletterOptIn, n.Consent.NewsletterOptIn)
	add(field.VerificationToken, n.Consent.Verification.Value)

	m := n.Media
	attach(p, field.Video, m.Video)
	attach(p, field.Cover, m.Cover)
	for _, still := range m.Stills {
		attach(p, field.Stills, still)
	}
	attach(p, field.Subtitle, m.Subtitle)

	return p, nil
}

func (e *Encoder) array(p *Plan, key string, values []string) {
	if len(values) == 0 {
		return
	}
	if e.mode == ArrayLegacyDuplicate {
		for _, v := range values {
			p.Fields = append(p.Fields, Field{Key: key, Value: v})
		}
		if len(values) == 1 {
			p.Fields = append(p.Fields, Field{Key: key, Value: values[0]})
		}
		return
	}
	for _, v := range values {
		p.Fields = append(p.Fields, Field{Key: key + "[]", Value: v})
	}
}

func attach(p *Plan, key string, a *draft.Attachment) {
	if a == nil || a.File == nil {
		return
	}
	p.Files = append(p.Files, FilePart{
		Key:         key,
		FileName:    a.File.Name(),
		ContentType: media.CanonicalType(a.File.Name(), a.File.ContentType()),
		File:        a.File,
	})
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Write streams the plan into mw. The caller closes mw.
func (p *Plan) Write(mw *multipart.Writer) error {
	for _, f := range p.Fields {
		if err := mw.WriteField(f.Key, f.Value); err != nil {
			return fmt.Errorf("write field %s: %w", f.Key, err)
		}
	}
	for _, f := range p.Files {
		if err := writeFile(mw, f); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(mw *multipart.Writer, f FilePart) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.Key), quoteEscaper.Replace(f.FileName)))
	h.Set("Content-Type", f.ContentType)

	w, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Key, err)
	}
	r, err := f.File.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.FileName, err)
	}
	defer r.Close()
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copy %s: %w", f.FileName, err)
	}
	return nil
}

// Payload is a fully buffered multipart body.
type Payload struct {
	ContentType string
	Body        []byte
}

// Encode builds the payload in memory.
func (e *Encoder) Encode(d draft.Draft) (*Payload, error) {
	p, err := e.Plan(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := p.Write(mw); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return &Payload{ContentType: mw.FormDataContentType(), Body: buf.Bytes()}, nil
}

// Stream builds the payload lazily, reading files as the body is consumed.
// The verification gate runs before Stream returns.
func (e *Encoder) Stream(d draft.Draft) (contentType string, body io.ReadCloser, err error) {
	p, err := e.Plan(d)
	if err != nil {
		return "", nil, err
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := p.Write(mw)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()
	return mw.FormDataContentType(), pr, nil
}
