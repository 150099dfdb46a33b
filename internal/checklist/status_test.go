package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  Status
	}{
		{"Pass", StatusPass},
		{"pass", StatusPass},
		{"PASS", StatusPass},
		{"Fail", StatusFail},
		{"fail", StatusFail},
		{"NA", StatusNA},
		{"na", StatusNA},
		{"n/a", StatusNA},
		{"N/A", StatusNA},
		{"Other", StatusOther},
		{"other", StatusOther},
		{"Unknown", StatusUnknown},
		{"", StatusUnknown},
		{"bogus", StatusUnknown},
		{"  pass  ", StatusPass},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseStatus(tc.input))
		})
	}
}

func TestStatusString_Canonical(t *testing.T) {
	assert.Equal(t, "Pass", StatusPass.String())
	assert.Equal(t, "NA", StatusNA.String())
	assert.Equal(t, "Unknown", StatusUnknown.String())

	// Values outside the enum render as Unknown rather than leaking raw text.
	assert.Equal(t, "Unknown", Status("garbage").String())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPass, StatusFail, StatusNA, StatusOther, StatusUnknown} {
		assert.True(t, s.Valid(), "%s should be valid", s)
	}
	assert.False(t, Status("maybe").Valid())
}
