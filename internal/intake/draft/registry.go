package draft

import (
	"fmt"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// fieldDef describes one field path: the step owning it, how raw input is
// stored and how the normalized draft is validated.
type fieldDef struct {
	path     string
	step     Step
	set      func(d *Draft, raw string)
	flag     func(d *Draft, v bool)
	validate func(n *Draft) string
}

var (
	registry   = map[string]fieldDef{}
	stepFields = map[Step][]string{}
)

// dependents lists the paths re-validated together with a path.
var dependents = map[string][]string{
	field.AcquisitionSource:       {field.AcquisitionSourceSocial, field.AcquisitionSourceOther},
	field.AcquisitionSourceSocial: {field.AcquisitionSource, field.AcquisitionSourceOther},
	field.AcquisitionSourceOther:  {field.AcquisitionSource, field.AcquisitionSourceSocial},
	field.HasContributors:         {field.Contributors},
	field.Contributors:            {field.HasContributors},
	field.HasSocialNetworks:       {field.SocialNetworks},
	field.SocialNetworks:          {field.HasSocialNetworks},
}

func register(defs ...fieldDef) {
	for _, s := range defs {
		if _, dup := registry[s.path]; dup {
			panic("draft: duplicate field " + s.path)
		}
		registry[s.path] = s
		stepFields[s.step] = append(stepFields[s.step], s.path)
	}
}

// Validate runs the rules of steps against the normalized d without any
// controller state. The server uses it to re-check decoded submissions.
func Validate(d Draft, steps ...Step) apperrors.ValidationErrors {
	n := d.Normalized()
	failed := make(map[string]string)
	for _, step := range steps {
		for _, path := range stepFields[step] {
			if msg := registry[path].validate(&n); msg != "" {
				failed[path] = msg
			}
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return apperrors.FromMap(failed)
}

func text(path string, step Step, target func(d *Draft) *string, rule func(string) string) fieldDef {
	return fieldDef{
		path: path,
		step: step,
		set:  func(d *Draft, raw string) { *target(d) = raw },
		validate: func(n *Draft) string {
			return rule(*target(n))
		},
	}
}

func init() {
	register(
		text(field.Gender, Step1, func(d *Draft) *string { return &d.Identity.Gender }, field.GenderRule),
		text(field.FirstName, Step1, func(d *Draft) *string { return &d.Identity.FirstName }, field.FirstNameRule),
		text(field.LastName, Step1, func(d *Draft) *string { return &d.Identity.LastName }, field.LastNameRule),
		text(field.Email, Step1, func(d *Draft) *string { return &d.Identity.Email }, field.EmailRule),
		text(field.Country, Step1, func(d *Draft) *string { return &d.Identity.Country }, field.CountryRule),
		text(field.PhoneNumber, Step1, func(d *Draft) *string { return &d.Identity.PhoneNumber }, field.PhoneRule),
		text(field.MobileNumber, Step1, func(d *Draft) *string { return &d.Identity.MobileNumber }, field.MobileRule),
		text(field.AddressStreet, Step1, func(d *Draft) *string { return &d.Identity.Address.Street }, field.AddressPartRule("street")),
		text(field.AddressStreet2, Step1, func(d *Draft) *string { return &d.Identity.Address.Street2 }, field.OptionalAddressPartRule("street line 2")),
		text(field.AddressZipcode, Step1, func(d *Draft) *string { return &d.Identity.Address.Zipcode }, field.ZipcodeRule),
		text(field.AddressCity, Step1, func(d *Draft) *string { return &d.Identity.Address.City }, field.AddressPartRule("city")),
		text(field.AddressStateRegion, Step1, func(d *Draft) *string { return &d.Identity.Address.StateRegion }, field.OptionalAddressPartRule("state or region")),
		text(field.AddressCountry, Step1, func(d *Draft) *string { return &d.Identity.Address.Country }, field.AddressPartRule("country")),
		fieldDef{
			path: field.AcquisitionSource,
			step: Step1,
			set: func(d *Draft, raw string) {
				src := normalize.DecodeAcquisition(raw, "")
				d.Identity.Acquisition.Main = src.Main
				d.Identity.Acquisition.LegacyOther = src.LegacyOther
				if src.Social != "" {
					d.Identity.Acquisition.Social = src.Social
				}
			},
			validate: func(n *Draft) string { return field.AcquisitionMainRule(n.Identity.Acquisition) },
		},
		fieldDef{
			path:     field.AcquisitionSourceSocial,
			step:     Step1,
			set:      func(d *Draft, raw string) { d.Identity.Acquisition.Social = raw },
			validate: func(n *Draft) string { return field.AcquisitionSocialRule(n.Identity.Acquisition) },
		},
		fieldDef{
			path: field.AcquisitionSourceOther,
			step: Step1,
			set: func(d *Draft, raw string) {
				d.Identity.Acquisition.Other = raw
				d.Identity.Acquisition.LegacyOther = ""
			},
			validate: func(n *Draft) string { return field.AcquisitionOtherRule(n.Identity.Acquisition) },
		},
		fieldDef{
			path:     field.AgeVerified,
			step:     Step1,
			flag:     func(d *Draft, v bool) { d.Identity.AgeVerified = v },
			validate: func(n *Draft) string { return field.MustBeTrue(n.Identity.AgeVerified, "you must confirm you are of legal age") },
		},
		fieldDef{
			path: field.HasContributors,
			step: Step1,
			flag: func(d *Draft, v bool) {
				if !v {
					d.Identity.Contributors = Contributors{}
				}
			},
			validate: func(*Draft) string { return "" },
		},
		fieldDef{
			path:     field.Contributors,
			step:     Step1,
			validate: validateContributors,
		},
		fieldDef{
			path: field.HasSocialNetworks,
			step: Step1,
			flag: func(d *Draft, v bool) {
				if !v {
					d.Identity.SocialNetworks = SocialNetworks{}
				}
			},
			validate: func(*Draft) string { return "" },
		},
		fieldDef{
			path:     field.SocialNetworks,
			step:     Step1,
			validate: validateSocialNetworks,
		},

		text(field.Title, Step2, func(d *Draft) *string { return &d.Work.Title }, field.TitleRule),
		text(field.TitleEN, Step2, func(d *Draft) *string { return &d.Work.TitleEN }, field.TitleENRule),
		text(field.Language, Step2, func(d *Draft) *string { return &d.Work.Language }, field.LanguageRule),
		text(field.Synopsis, Step2, func(d *Draft) *string { return &d.Work.Synopsis }, field.SynopsisRule),
		text(field.SynopsisEN, Step2, func(d *Draft) *string { return &d.Work.SynopsisEN }, field.SynopsisENRule),
		text(field.TechResume, Step2, func(d *Draft) *string { return &d.Work.TechResume }, field.TechResumeRule),
		text(field.CreativeResume, Step2, func(d *Draft) *string { return &d.Work.CreativeResume }, field.CreativeResumeRule),
		text(field.Classification, Step2, func(d *Draft) *string { return &d.Work.Classification }, field.ClassificationRule),
		fieldDef{
			path:     field.Tags,
			step:     Step2,
			validate: func(n *Draft) string { return field.TagsRule(n.Work.Tags) },
		},

		fieldDef{
			path: field.Video,
			step: Step3,
			validate: func(n *Draft) string {
				if n.Media.Video == nil {
					return "a video file is required"
				}
				return ""
			},
		},
		fieldDef{
			path: field.Cover,
			step: Step3,
			validate: func(n *Draft) string {
				if n.Media.Cover == nil {
					return "a cover image is required"
				}
				return ""
			},
		},
		fieldDef{
			path:     field.Stills,
			step:     Step3,
			validate: func(*Draft) string { return "" },
		},
		fieldDef{
			path:     field.Subtitle,
			step:     Step3,
			validate: func(*Draft) string { return "" },
		},
		fieldDef{
			path: field.RightsAccepted,
			step: Step3,
			flag: func(d *Draft, v bool) { d.Consent.RightsAccepted = v },
			validate: func(n *Draft) string {
				return field.MustBeTrue(n.Consent.RightsAccepted, "you must accept the rights and conditions")
			},
		},
		fieldDef{
			path:     field.NewsletterOptIn,
			step:     Step3,
			flag:     func(d *Draft, v bool) { d.Consent.NewsletterOptIn = v },
			validate: func(*Draft) string { return "" },
		},
	)
}

func validateContributors(n *Draft) string {
	c := n.Identity.Contributors
	if !c.Enabled() {
		return ""
	}
	if c.Len() == 0 {
		return "add at least one contributor"
	}
	seen := make(map[string]struct{}, c.Len())
	for i, ct := range c.items {
		if errs := ct.Validate(); len(errs) > 0 {
			return fmt.Sprintf("contributor %d is invalid", i+1)
		}
		if _, dup := seen[ct.Email]; dup {
			return fmt.Sprintf("contributor %d is already added", i+1)
		}
		seen[ct.Email] = struct{}{}
	}
	return ""
}

func validateSocialNetworks(n *Draft) string {
	s := n.Identity.SocialNetworks
	if !s.Enabled() {
		return ""
	}
	if s.Len() == 0 {
		return "add at least one social network"
	}
	for _, p := range field.Platforms {
		if msg := field.URLRule(s.URL(p)); msg != "" {
			return fmt.Sprintf("%s: %s", p, msg)
		}
	}
	for p := range s.urls {
		if !p.IsValid() {
			return fmt.Sprintf("unknown social network %q", p)
		}
	}
	return ""
}
