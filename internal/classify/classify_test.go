package classify

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Role
	}{
		{"R1", Router},
		{"r23", Router},
		{"CoreRouter", Router},
		{"SW2", Switch},
		{"sw12", Switch},
		{"AccessSwitch-3", Switch},
		{"PC5", PC},
		{"pc-lab", PC},
		{"FileServer1", Server},
		{"server-router", Server},
		{"cloud-gateway", Other},
		{"Internet", Other},
		{"", Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassifyShortNames(t *testing.T) {
	// Out-of-range or empty suffixes are not digits.
	assert.Equal(t, Other, Classify("r"))
	assert.Equal(t, Other, Classify("sw"))
	assert.Equal(t, Other, Classify("s"))

	// "sr" has an r but the suffix after index 1 is not numeric.
	assert.Equal(t, Other, Classify("sr"))
}

func TestClassifyDigitRuleQuirks(t *testing.T) {
	// Any name with an r and an all-digit tail from index 1 is a router,
	// even when the r is the only non-digit.
	assert.Equal(t, Router, Classify("R0"))
	// "x12" has a numeric tail but no r.
	assert.Equal(t, Other, Classify("x12"))
	// "swr" contains an r but neither numeric tail; falls through to other.
	assert.Equal(t, Other, Classify("swr"))
	// "sw1" also contains no r so the switch rule applies.
	assert.Equal(t, Switch, Classify("SW1"))
}

func TestClassifyIsTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	valid := make(map[Role]bool, len(Roles))
	for _, r := range Roles {
		valid[r] = true
	}

	properties.Property("every name maps to a known role", prop.ForAll(
		func(name string) bool {
			return valid[Classify(name)]
		},
		gen.AnyString(),
	))

	properties.Property("names containing server are always servers", prop.ForAll(
		func(prefix, suffix string) bool {
			return Classify(prefix+"SeRvEr"+suffix) == Server
		},
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.Property("classification ignores case", prop.ForAll(
		func(name string) bool {
			return Classify(name) == Classify(toUpperASCII(name))
		},
		gen.RegexMatch("[a-zA-Z0-9]*"),
	))

	properties.TestingRun(t)
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
