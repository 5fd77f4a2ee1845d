package field

import (
	"fmt"

	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// Platform identifies a social network slot.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformX         Platform = "x"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformVimeo     Platform = "vimeo"
)

// Platforms lists every platform slot in display order.
var Platforms = []Platform{
	PlatformFacebook, PlatformInstagram, PlatformTikTok, PlatformX,
	PlatformYouTube, PlatformLinkedIn, PlatformVimeo,
}

// IsValid reports whether p is a known platform.
func (p Platform) IsValid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// AcquisitionMainRule validates the top-level acquisition answer.
func AcquisitionMainRule(src normalize.AcquisitionSource) string {
	if src.Main == "" {
		return "please tell us how you heard about the festival"
	}
	if !src.Main.IsValid() {
		return "acquisition source is invalid"
	}
	if src.LegacyOther != "" {
		if length(src.LegacyOther) > MaxOtherSourceLength {
			return fmt.Sprintf("acquisition source must be %d characters or fewer", MaxOtherSourceLength)
		}
		return FreeTextRule(src.LegacyOther, "acquisition source")
	}
	return ""
}

// AcquisitionSocialRule requires a known platform when the main answer is
// social_networks.
func AcquisitionSocialRule(src normalize.AcquisitionSource) string {
	if src.Main != normalize.AcquisitionSocialNetworks {
		return ""
	}
	if src.Social == "" {
		return "please select a social network"
	}
	if !Platform(src.Social).IsValid() {
		return "social network is invalid"
	}
	return ""
}

// AcquisitionOtherRule requires free text when the main answer is other,
// unless a legacy value is being carried over. The legacy value itself is
// checked by AcquisitionMainRule.
func AcquisitionOtherRule(src normalize.AcquisitionSource) string {
	if src.Main != normalize.AcquisitionOther || src.LegacyOther != "" {
		return ""
	}
	n := length(src.Other)
	if n == 0 {
		return "please tell us where you heard about the festival"
	}
	if n < MinOtherSourceLength || n > MaxOtherSourceLength {
		return fmt.Sprintf("answer must be between %d and %d characters", MinOtherSourceLength, MaxOtherSourceLength)
	}
	return FreeTextRule(src.Other, "answer")
}
