package submission

import (
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
	"github.com/consensuslabs/festival/backend/internal/intake/transport"
)

// ToView maps a stored submission to its API representation.
func ToView(s *Submission) transport.Submission {
	v := transport.Submission{
		ID:           s.ID.String(),
		Status:       string(s.Status),
		Gender:       s.Gender,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		Email:        s.Email,
		Country:      s.Country,
		PhoneNumber:  s.PhoneNumber,
		MobileNumber: s.MobileNumber,
		Address:      s.Address,
		AddressParts: normalize.AddressParts{
			Street:      s.Street,
			Street2:     s.Street2,
			Zipcode:     s.Zipcode,
			City:        s.City,
			StateRegion: s.StateRegion,
			Country:     s.AddressCountry,
		},
		AcquisitionSource:      s.AcquisitionSource,
		AcquisitionSourceOther: s.AcquisitionSourceOther,
		AgeVerified:            s.AgeVerified,
		Contributors:           make([]transport.Contributor, 0, len(s.Contributors)),
		SocialNetworks:         make(map[string]string, len(s.SocialNetworks)),
		Title:                  s.Title,
		TitleEN:                s.TitleEN,
		Language:               s.Language,
		Synopsis:               s.Synopsis,
		SynopsisEN:             s.SynopsisEN,
		TechResume:             s.TechResume,
		CreativeResume:         s.CreativeResume,
		Classification:         s.Classification,
		Tags:                   make([]string, 0, len(s.Tags)),
		RightsAccepted:         s.RightsAccepted,
		NewsletterOptIn:        s.NewsletterOptIn,
		DurationSeconds:        s.DurationSeconds,
		Files:                  make([]transport.StoredFile, 0, len(s.Files)),
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
	for _, c := range s.Contributors {
		v.Contributors = append(v.Contributors, transport.Contributor{
			Gender:         c.Gender,
			FirstName:      c.FirstName,
			LastName:       c.LastName,
			Email:          c.Email,
			ProductionRole: c.ProductionRole,
		})
	}
	for _, sn := range s.SocialNetworks {
		v.SocialNetworks[sn.Platform] = sn.URL
	}
	for _, t := range s.Tags {
		v.Tags = append(v.Tags, t.Value)
	}
	for _, f := range s.Files {
		v.Files = append(v.Files, transport.StoredFile{
			Role:        f.Role,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
	}
	return v
}
