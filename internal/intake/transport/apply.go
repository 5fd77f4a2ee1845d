package transport

import (
	"fmt"

	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// Apply loads the stored values of s into a fresh controller so they can be
// amended. Files stay on the server and are not re-attached.
func (s *Submission) Apply(c *draft.Controller) error {
	parts := s.AddressParts
	values := []struct{ path, value string }{
		{field.Gender, s.Gender},
		{field.FirstName, s.FirstName},
		{field.LastName, s.LastName},
		{field.Email, s.Email},
		{field.Country, s.Country},
		{field.PhoneNumber, s.PhoneNumber},
		{field.MobileNumber, s.MobileNumber},
		{field.AddressStreet, parts.Street},
		{field.AddressStreet2, parts.Street2},
		{field.AddressZipcode, parts.Zipcode},
		{field.AddressCity, parts.City},
		{field.AddressStateRegion, parts.StateRegion},
		{field.AddressCountry, parts.Country},
		{field.Title, s.Title},
		{field.TitleEN, s.TitleEN},
		{field.Language, s.Language},
		{field.Synopsis, s.Synopsis},
		{field.SynopsisEN, s.SynopsisEN},
		{field.TechResume, s.TechResume},
		{field.CreativeResume, s.CreativeResume},
		{field.Classification, s.Classification},
	}
	for _, v := range values {
		if err := c.SetField(v.path, v.value); err != nil {
			return err
		}
	}

	if err := c.SetAcquisition(normalize.DecodeAcquisition(s.AcquisitionSource, s.AcquisitionSourceOther)); err != nil {
		return err
	}

	flags := []struct {
		path  string
		value bool
	}{
		{field.AgeVerified, s.AgeVerified},
		{field.RightsAccepted, s.RightsAccepted},
		{field.NewsletterOptIn, s.NewsletterOptIn},
	}
	for _, f := range flags {
		if err := c.SetFlag(f.path, f.value); err != nil {
			return err
		}
	}

	for _, tag := range s.Tags {
		if err := c.AddTag(tag); err != nil {
			return fmt.Errorf("tag %q: %w", tag, err)
		}
	}

	if len(s.Contributors) > 0 {
		editor, err := c.OpenContributors()
		if err != nil {
			return err
		}
		for _, ct := range s.Contributors {
			if err := editor.Add(draft.Contributor(ct)); err != nil {
				editor.Close()
				return fmt.Errorf("contributor %s: %w", ct.Email, err)
			}
		}
		editor.Close()
	}

	if len(s.SocialNetworks) > 0 {
		editor, err := c.OpenSocialNetworks()
		if err != nil {
			return err
		}
		for platform, u := range s.SocialNetworks {
			if err := editor.Set(field.Platform(platform), u); err != nil {
				editor.Close()
				return fmt.Errorf("social network %s: %w", platform, err)
			}
		}
		editor.Close()
	}
	return nil
}
