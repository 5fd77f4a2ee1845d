package normalize

import "strings"

// AcquisitionMain is the top-level answer to "how did you hear about us".
type AcquisitionMain string

const (
	AcquisitionSocialNetworks     AcquisitionMain = "social_networks"
	AcquisitionWordOfMouth        AcquisitionMain = "word_of_mouth"
	AcquisitionMobileFilmFestival AcquisitionMain = "mobile_film_festival"
	AcquisitionSearchEngine       AcquisitionMain = "search_engine"
	AcquisitionOther              AcquisitionMain = "other"
)

const socialPrefix = string(AcquisitionSocialNetworks) + ":"

// IsValid reports whether m is one of the known tokens.
func (m AcquisitionMain) IsValid() bool {
	switch m {
	case AcquisitionSocialNetworks, AcquisitionWordOfMouth, AcquisitionMobileFilmFestival,
		AcquisitionSearchEngine, AcquisitionOther:
		return true
	}
	return false
}

// AcquisitionSource is the tagged union behind the acquisition question.
// Social is meaningful only for social_networks, Other only for other.
// LegacyOther keeps an unrecognized stored string verbatim.
type AcquisitionSource struct {
	Main        AcquisitionMain `json:"main" yaml:"main"`
	Social      string          `json:"social,omitempty" yaml:"social"`
	Other       string          `json:"other,omitempty" yaml:"other"`
	LegacyOther string          `json:"legacyOther,omitempty" yaml:"legacyOther"`
}

// EncodeAcquisition serializes src into the wire value and the separate
// acquisitionSourceOther value.
func EncodeAcquisition(src AcquisitionSource) (value, other string) {
	switch src.Main {
	case "":
		return "", ""
	case AcquisitionSocialNetworks:
		social := strings.ToLower(Text(src.Social))
		if social == "" {
			return string(AcquisitionSocialNetworks), ""
		}
		return socialPrefix + social, ""
	case AcquisitionOther:
		if src.LegacyOther != "" && Text(src.Other) == "" {
			return src.LegacyOther, ""
		}
		return string(AcquisitionOther), Text(src.Other)
	default:
		return string(src.Main), ""
	}
}

// DecodeAcquisition parses a wire value. Known tokens and the
// social_networks: prefix are recognized; any other non-empty value is kept
// as LegacyOther under the other branch.
func DecodeAcquisition(value, other string) AcquisitionSource {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return AcquisitionSource{}
	}

	if rest, ok := strings.CutPrefix(trimmed, socialPrefix); ok {
		return AcquisitionSource{Main: AcquisitionSocialNetworks, Social: strings.ToLower(strings.TrimSpace(rest))}
	}

	main := AcquisitionMain(trimmed)
	switch main {
	case AcquisitionSocialNetworks:
		return AcquisitionSource{Main: main}
	case AcquisitionOther:
		return AcquisitionSource{Main: main, Other: Text(other)}
	case AcquisitionWordOfMouth, AcquisitionMobileFilmFestival, AcquisitionSearchEngine:
		return AcquisitionSource{Main: main}
	}

	return AcquisitionSource{Main: AcquisitionOther, LegacyOther: value}
}
