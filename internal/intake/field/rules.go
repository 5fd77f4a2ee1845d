package field

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Length bounds, in runes.
const (
	MinNameLength           = 2
	MaxNameLength           = 100
	MaxEmailLength          = 254
	MaxCountryLength        = 100
	MaxAddressPartLength    = 255
	MaxZipcodeLength        = 20
	MinProductionRoleLength = 2
	MaxProductionRoleLength = 80
	MaxTitleLength          = 255
	MaxLanguageLength       = 100
	MaxSynopsisLength       = 2000
	MaxResumeLength         = 2000
	MinOtherSourceLength    = 2
	MaxOtherSourceLength    = 255
	MaxTags                 = 10
	MaxTagLength            = 20
	MaxURLLength            = 2048
)

var (
	validate = validator.New()
	markup   = bluemonday.StrictPolicy()

	nameRx           = regexp.MustCompile(`^[\p{L}\p{M}][\p{L}\p{M} '.\-]*$`)
	phoneRx          = regexp.MustCompile(`^\+?[0-9 ().\-]{6,20}$`)
	zipcodeRx        = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)
	productionRoleRx = regexp.MustCompile(`^[\p{L}\p{M}\p{N} '&/().,\-]+$`)

	// complete element, end tag, comment or doctype
	tagRx = regexp.MustCompile(`<[A-Za-z!/?][^<>]*>`)
)

func length(s string) int { return utf8.RuneCountInString(s) }

func required(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return label + " is required"
	}
	return ""
}

func maxLen(value string, max int, label string) string {
	if length(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", label, max)
	}
	return ""
}

func name(value, label string) string {
	if msg := required(value, label); msg != "" {
		return msg
	}
	if length(value) < MinNameLength {
		return fmt.Sprintf("%s must be at least %d characters", label, MinNameLength)
	}
	if msg := maxLen(value, MaxNameLength, label); msg != "" {
		return msg
	}
	if !nameRx.MatchString(value) {
		return label + " contains invalid characters"
	}
	return ""
}

// FirstNameRule validates a first name.
func FirstNameRule(v string) string { return name(v, "first name") }

// LastNameRule validates a last name.
func LastNameRule(v string) string { return name(v, "last name") }

// GenderRule accepts female, male or other.
func GenderRule(v string) string {
	switch v {
	case "female", "male", "other":
		return ""
	case "":
		return "gender is required"
	}
	return "gender must be one of female, male, other"
}

// EmailRule validates a required email address.
func EmailRule(v string) string {
	if msg := required(v, "email"); msg != "" {
		return msg
	}
	if msg := maxLen(v, MaxEmailLength, "email"); msg != "" {
		return msg
	}
	if err := validate.Var(v, "email"); err != nil {
		return "email address is invalid"
	}
	return ""
}

// CountryRule validates a required country name.
func CountryRule(v string) string {
	if msg := required(v, "country"); msg != "" {
		return msg
	}
	return maxLen(v, MaxCountryLength, "country")
}

func phone(v, label string) string {
	if !phoneRx.MatchString(v) {
		return label + " is invalid"
	}
	digits := 0
	for _, r := range v {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 6 {
		return label + " is invalid"
	}
	return ""
}

// PhoneRule validates the optional landline number.
func PhoneRule(v string) string {
	if v == "" {
		return ""
	}
	return phone(v, "phone number")
}

// MobileRule validates the required mobile number.
func MobileRule(v string) string {
	if msg := required(v, "mobile number"); msg != "" {
		return msg
	}
	return phone(v, "mobile number")
}

// AddressPartRule returns the validator of a required address part.
func AddressPartRule(label string) func(string) string {
	return func(v string) string {
		if msg := required(v, label); msg != "" {
			return msg
		}
		return maxLen(v, MaxAddressPartLength, label)
	}
}

// OptionalAddressPartRule returns the validator of an optional address part.
func OptionalAddressPartRule(label string) func(string) string {
	return func(v string) string {
		return maxLen(v, MaxAddressPartLength, label)
	}
}

// ZipcodeRule validates a required postal code.
func ZipcodeRule(v string) string {
	if msg := required(v, "zipcode"); msg != "" {
		return msg
	}
	if msg := maxLen(v, MaxZipcodeLength, "zipcode"); msg != "" {
		return msg
	}
	if !zipcodeRx.MatchString(v) {
		return "zipcode contains invalid characters"
	}
	return ""
}

// ProductionRoleRule validates a contributor's role on the production.
func ProductionRoleRule(v string) string {
	if msg := required(v, "production role"); msg != "" {
		return msg
	}
	n := length(v)
	if n < MinProductionRoleLength || n > MaxProductionRoleLength {
		return fmt.Sprintf("production role must be between %d and %d characters",
			MinProductionRoleLength, MaxProductionRoleLength)
	}
	if !productionRoleRx.MatchString(v) {
		return "production role contains invalid characters"
	}
	return ""
}

// FreeTextRule rejects control characters and markup.
func FreeTextRule(v, label string) string {
	for _, r := range v {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return label + " contains invalid characters"
		}
	}
	if tagRx.MatchString(v) && html.UnescapeString(markup.Sanitize(v)) != html.UnescapeString(v) {
		return label + " must not contain markup"
	}
	return ""
}

func text(v string, isRequired bool, max int, label string) string {
	if v == "" {
		if isRequired {
			return label + " is required"
		}
		return ""
	}
	if msg := maxLen(v, max, label); msg != "" {
		return msg
	}
	return FreeTextRule(v, label)
}

// TitleRule validates the optional original-language title.
func TitleRule(v string) string { return text(v, false, MaxTitleLength, "title") }

// TitleENRule validates the required English title.
func TitleENRule(v string) string { return text(v, true, MaxTitleLength, "English title") }

// LanguageRule validates the required original language.
func LanguageRule(v string) string {
	if msg := required(v, "language"); msg != "" {
		return msg
	}
	return maxLen(v, MaxLanguageLength, "language")
}

// SynopsisRule validates the optional original-language synopsis.
func SynopsisRule(v string) string { return text(v, false, MaxSynopsisLength, "synopsis") }

// SynopsisENRule validates the required English synopsis.
func SynopsisENRule(v string) string { return text(v, true, MaxSynopsisLength, "English synopsis") }

// TechResumeRule validates the required technical summary.
func TechResumeRule(v string) string { return text(v, true, MaxResumeLength, "technical summary") }

// CreativeResumeRule validates the required creative summary.
func CreativeResumeRule(v string) string {
	return text(v, true, MaxResumeLength, "creative summary")
}

// ClassificationRule accepts hybrid or ia.
func ClassificationRule(v string) string {
	switch v {
	case "hybrid", "ia":
		return ""
	case "":
		return "classification is required"
	}
	return "classification must be hybrid or ia"
}

// TagRule validates a single normalized tag.
func TagRule(v string) string {
	if v == "" {
		return "tag must not be empty"
	}
	if length(v) > MaxTagLength {
		return fmt.Sprintf("tag must be %d characters or fewer", MaxTagLength)
	}
	return FreeTextRule(v, "tag")
}

// TagsRule validates a normalized tag list.
func TagsRule(tags []string) string {
	if len(tags) > MaxTags {
		return fmt.Sprintf("at most %d tags are allowed", MaxTags)
	}
	for _, t := range tags {
		if msg := TagRule(t); msg != "" {
			return msg
		}
	}
	return ""
}

// URLRule validates an optional absolute http(s) URL.
func URLRule(v string) string {
	if v == "" {
		return ""
	}
	if length(v) > MaxURLLength {
		return fmt.Sprintf("URL must be %d characters or fewer", MaxURLLength)
	}
	if err := validate.Var(v, "url"); err != nil {
		return "URL is invalid"
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "URL must start with http:// or https://"
	}
	return ""
}

// MustBeTrue validates a required checkbox.
func MustBeTrue(v bool, message string) string {
	if !v {
		return message
	}
	return ""
}
