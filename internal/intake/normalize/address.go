package normalize

import "strings"

// AddressParts holds the individual address inputs of the identity step.
type AddressParts struct {
	Street      string `json:"street" yaml:"street"`
	Street2     string `json:"street2,omitempty" yaml:"street2"`
	Zipcode     string `json:"zipcode" yaml:"zipcode"`
	City        string `json:"city" yaml:"city"`
	StateRegion string `json:"stateRegion,omitempty" yaml:"stateRegion"`
	Country     string `json:"country" yaml:"country"`
}

// Normalized returns a copy with every part passed through Text.
func (p AddressParts) Normalized() AddressParts {
	return AddressParts{
		Street:      Text(p.Street),
		Street2:     Text(p.Street2),
		Zipcode:     Text(p.Zipcode),
		City:        Text(p.City),
		StateRegion: Text(p.StateRegion),
		Country:     Text(p.Country),
	}
}

// ComposeAddress joins the non-empty parts with ", " in the order
// street, street2, city, state/region, zipcode, country.
func ComposeAddress(p AddressParts) string {
	n := p.Normalized()
	ordered := []string{n.Street, n.Street2, n.City, n.StateRegion, n.Zipcode, n.Country}
	parts := make([]string, 0, len(ordered))
	for _, part := range ordered {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
