package field

import (
	"strings"
	"testing"

	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
	"github.com/stretchr/testify/assert"
)

func TestAcquisitionRules(t *testing.T) {
	tests := []struct {
		name   string
		src    normalize.AcquisitionSource
		main   bool
		social bool
		other  bool
	}{
		{"missing", normalize.AcquisitionSource{}, false, true, true},
		{"word of mouth", normalize.AcquisitionSource{Main: normalize.AcquisitionWordOfMouth}, true, true, true},
		{"social without platform", normalize.AcquisitionSource{Main: normalize.AcquisitionSocialNetworks}, true, false, true},
		{"social unknown platform", normalize.AcquisitionSource{Main: normalize.AcquisitionSocialNetworks, Social: "myspace"}, true, false, true},
		{"social tiktok", normalize.AcquisitionSource{Main: normalize.AcquisitionSocialNetworks, Social: "tiktok"}, true, true, true},
		{"other without text", normalize.AcquisitionSource{Main: normalize.AcquisitionOther}, true, true, false},
		{"other with text", normalize.AcquisitionSource{Main: normalize.AcquisitionOther, Other: "a poster"}, true, true, true},
		{"other legacy", normalize.AcquisitionSource{Main: normalize.AcquisitionOther, LegacyOther: "radio ad"}, true, true, true},
		{"legacy too long", normalize.AcquisitionSource{Main: normalize.AcquisitionOther, LegacyOther: strings.Repeat("x", MaxOtherSourceLength+1)}, false, true, true},
		{"legacy markup", normalize.AcquisitionSource{Main: normalize.AcquisitionOther, LegacyOther: "<script>alert(1)</script>"}, false, true, true},
		{"unknown token", normalize.AcquisitionSource{Main: "billboard"}, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.main, AcquisitionMainRule(tt.src) == "")
			assert.Equal(t, tt.social, AcquisitionSocialRule(tt.src) == "")
			assert.Equal(t, tt.other, AcquisitionOtherRule(tt.src) == "")
		})
	}
}

func TestPlatforms(t *testing.T) {
	assert.Len(t, Platforms, 7)
	for _, p := range Platforms {
		assert.True(t, p.IsValid())
	}
	assert.False(t, Platform("myspace").IsValid())
}
