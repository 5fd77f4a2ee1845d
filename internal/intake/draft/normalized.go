package draft

import (
	"strings"

	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// Normalized returns a deep copy of d with every text value canonicalized.
// Files and previews are shared with d.
func (d Draft) Normalized() Draft {
	out := d.clone()

	id := &out.Identity
	id.Gender = strings.ToLower(normalize.Text(id.Gender))
	id.FirstName = normalize.Text(id.FirstName)
	id.LastName = normalize.Text(id.LastName)
	id.Email = normalize.Email(id.Email)
	id.Country = normalize.Text(id.Country)
	id.PhoneNumber = normalize.Text(id.PhoneNumber)
	id.MobileNumber = normalize.Text(id.MobileNumber)
	id.Address = id.Address.Normalized()
	id.Acquisition = normalizeAcquisition(id.Acquisition)
	for i, c := range id.Contributors.items {
		id.Contributors.items[i] = c.Normalized()
	}
	for p, u := range id.SocialNetworks.urls {
		id.SocialNetworks.urls[p] = normalize.Text(u)
	}

	w := &out.Work
	w.Title = normalize.Text(w.Title)
	w.TitleEN = normalize.Text(w.TitleEN)
	w.Language = normalize.Text(w.Language)
	w.Synopsis = normalize.Multiline(w.Synopsis)
	w.SynopsisEN = normalize.Multiline(w.SynopsisEN)
	w.TechResume = normalize.Multiline(w.TechResume)
	w.CreativeResume = normalize.Multiline(w.CreativeResume)
	w.Classification = strings.ToLower(normalize.Text(w.Classification))
	w.Tags = normalize.Tags(w.Tags)

	out.Consent.Verification.Value = strings.TrimSpace(out.Consent.Verification.Value)
	return out
}

func normalizeAcquisition(src normalize.AcquisitionSource) normalize.AcquisitionSource {
	return normalize.AcquisitionSource{
		Main:        normalize.AcquisitionMain(strings.ToLower(normalize.Text(string(src.Main)))),
		Social:      strings.ToLower(normalize.Text(src.Social)),
		Other:       normalize.Text(src.Other),
		LegacyOther: src.LegacyOther,
	}
}

func (d Draft) clone() Draft {
	out := d
	out.Identity.Contributors = d.Identity.Contributors.clone()
	out.Identity.SocialNetworks = d.Identity.SocialNetworks.clone()
	out.Work.Tags = append([]string(nil), d.Work.Tags...)
	out.Media.Stills = append([]*Attachment(nil), d.Media.Stills...)
	return out
}
