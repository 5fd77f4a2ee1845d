package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
	"gopkg.in/yaml.v3"
)

// draftFile is the YAML form of a submission draft. Empty values and
// absent flags leave the controller's value untouched, so the same file
// works as an overlay when amending. Media paths are relative to the file.
type draftFile struct {
	Identity struct {
		Gender         string                      `yaml:"gender"`
		FirstName      string                      `yaml:"firstName"`
		LastName       string                      `yaml:"lastName"`
		Email          string                      `yaml:"email"`
		Country        string                      `yaml:"country"`
		PhoneNumber    string                      `yaml:"phoneNumber"`
		MobileNumber   string                      `yaml:"mobileNumber"`
		Address        normalize.AddressParts      `yaml:"address"`
		Acquisition    normalize.AcquisitionSource `yaml:"acquisition"`
		AgeVerified    *bool                       `yaml:"ageVerified"`
		Contributors   []draft.Contributor         `yaml:"contributors"`
		SocialNetworks map[string]string           `yaml:"socialNetworks"`
	} `yaml:"identity"`

	Work struct {
		Title          string   `yaml:"title"`
		TitleEN        string   `yaml:"titleEN"`
		Language       string   `yaml:"language"`
		Synopsis       string   `yaml:"synopsis"`
		SynopsisEN     string   `yaml:"synopsisEN"`
		TechResume     string   `yaml:"techResume"`
		CreativeResume string   `yaml:"creativeResume"`
		Classification string   `yaml:"classification"`
		Tags           []string `yaml:"tags"`
	} `yaml:"work"`

	Media struct {
		Video    string   `yaml:"video"`
		Cover    string   `yaml:"cover"`
		Stills   []string `yaml:"stills"`
		Subtitle string   `yaml:"subtitle"`
	} `yaml:"media"`

	Consent struct {
		RightsAccepted  *bool `yaml:"rightsAccepted"`
		NewsletterOptIn *bool `yaml:"newsletterOptIn"`
	} `yaml:"consent"`

	baseDir string
}

// loadDraftFile decodes path, rejecting unknown keys.
func loadDraftFile(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var df draftFile
	if err := dec.Decode(&df); err != nil {
		return nil, fmt.Errorf("parse draft %s: %w", path, err)
	}
	df.baseDir = filepath.Dir(path)
	return &df, nil
}

// apply copies the file into c. Collections given in the file replace the
// ones already held by c. Every file rejection is returned after the whole
// draft has been applied so all of them can be reported at once.
func (df *draftFile) apply(ctx context.Context, c *draft.Controller, open func(string) (media.File, error)) error {
	id, work := df.Identity, df.Work
	values := []struct{ path, value string }{
		{field.Gender, id.Gender},
		{field.FirstName, id.FirstName},
		{field.LastName, id.LastName},
		{field.Email, id.Email},
		{field.Country, id.Country},
		{field.PhoneNumber, id.PhoneNumber},
		{field.MobileNumber, id.MobileNumber},
		{field.AddressStreet, id.Address.Street},
		{field.AddressStreet2, id.Address.Street2},
		{field.AddressZipcode, id.Address.Zipcode},
		{field.AddressCity, id.Address.City},
		{field.AddressStateRegion, id.Address.StateRegion},
		{field.AddressCountry, id.Address.Country},
		{field.Title, work.Title},
		{field.TitleEN, work.TitleEN},
		{field.Language, work.Language},
		{field.Synopsis, work.Synopsis},
		{field.SynopsisEN, work.SynopsisEN},
		{field.TechResume, work.TechResume},
		{field.CreativeResume, work.CreativeResume},
		{field.Classification, work.Classification},
	}
	for _, v := range values {
		if v.value == "" {
			continue
		}
		if err := c.SetField(v.path, v.value); err != nil {
			return err
		}
	}

	if id.Acquisition.Main != "" {
		if err := c.SetAcquisition(id.Acquisition); err != nil {
			return err
		}
	}

	flags := []struct {
		path  string
		value *bool
	}{
		{field.AgeVerified, id.AgeVerified},
		{field.RightsAccepted, df.Consent.RightsAccepted},
		{field.NewsletterOptIn, df.Consent.NewsletterOptIn},
	}
	for _, f := range flags {
		if f.value == nil {
			continue
		}
		if err := c.SetFlag(f.path, *f.value); err != nil {
			return err
		}
	}

	if len(work.Tags) > 0 {
		for _, existing := range c.Draft().Work.Tags {
			if err := c.RemoveTag(existing); err != nil {
				return err
			}
		}
		for _, tag := range work.Tags {
			if err := c.AddTag(tag); err != nil {
				return fmt.Errorf("tag %q: %w", tag, err)
			}
		}
	}

	if len(id.Contributors) > 0 {
		if err := replaceContributors(c, id.Contributors); err != nil {
			return err
		}
	}
	if len(id.SocialNetworks) > 0 {
		if err := replaceSocialNetworks(c, id.SocialNetworks); err != nil {
			return err
		}
	}

	return df.attach(ctx, c, open)
}

func replaceContributors(c *draft.Controller, items []draft.Contributor) error {
	editor, err := c.OpenContributors()
	if err != nil {
		return err
	}
	defer editor.Close()

	for range editor.Items() {
		if err := editor.Remove(0); err != nil {
			return err
		}
	}
	for _, ct := range items {
		if err := editor.Add(ct); err != nil {
			return fmt.Errorf("contributor %s: %w", ct.Email, err)
		}
	}
	return nil
}

func replaceSocialNetworks(c *draft.Controller, urls map[string]string) error {
	editor, err := c.OpenSocialNetworks()
	if err != nil {
		return err
	}
	defer editor.Close()

	for name := range urls {
		if !field.Platform(name).IsValid() {
			return fmt.Errorf("social network %s: unknown platform", name)
		}
	}
	for _, p := range field.Platforms {
		if u, ok := urls[string(p)]; ok {
			if err := editor.Set(p, u); err != nil {
				return fmt.Errorf("social network %s: %w", p, err)
			}
		}
	}
	for _, p := range field.Platforms {
		if _, ok := urls[string(p)]; !ok && editor.URL(p) != "" {
			if err := editor.Set(p, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

type mediaSlot struct {
	path string
	file string
}

func (df *draftFile) slots() []mediaSlot {
	var slots []mediaSlot
	add := func(path, file string) {
		if file != "" {
			slots = append(slots, mediaSlot{path: path, file: df.resolve(file)})
		}
	}
	add(field.Video, df.Media.Video)
	add(field.Cover, df.Media.Cover)
	for _, still := range df.Media.Stills {
		add(field.Stills, still)
	}
	add(field.Subtitle, df.Media.Subtitle)
	return slots
}

func (df *draftFile) attach(ctx context.Context, c *draft.Controller, open func(string) (media.File, error)) error {
	var rejected []error
	for _, slot := range df.slots() {
		f, err := open(slot.file)
		if err != nil {
			return fmt.Errorf("%s: %w", slot.path, err)
		}
		if err := c.AttachFile(ctx, slot.path, f); err != nil {
			rejected = append(rejected, fmt.Errorf("%s: %w", slot.file, err))
		}
	}
	if len(rejected) > 0 {
		return &rejectedFiles{errs: rejected}
	}
	return nil
}

func (df *draftFile) resolve(p string) string {
	if filepath.IsAbs(p) || df.baseDir == "" {
		return p
	}
	return filepath.Join(df.baseDir, p)
}

// rejectedFiles collects the files the draft refused.
type rejectedFiles struct {
	errs []error
}

func (r *rejectedFiles) Error() string {
	var buf bytes.Buffer
	buf.WriteString("files rejected:")
	for _, err := range r.errs {
		buf.WriteString("\n  ")
		buf.WriteString(err.Error())
	}
	return buf.String()
}

func (r *rejectedFiles) Unwrap() []error { return r.errs }

func openLocal(path string) (media.File, error) {
	return media.OpenLocal(path)
}
