package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct{ in, want string }{
		{"9812345678", "+9779812345678"},
		{"981-234-5678", "+9779812345678"},
		{" (981) 234 5678 ", "+9779812345678"},
		{"+9779812345678", "+9779812345678"},
		{"+1 415 555 0100 22", "+1 415 555 0100 22"},
		{"9779812345678", ""},
		{"12345", ""},
		{"", ""},
		{"+12345", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in, "+977"), "input %q", tt.in)
	}
}
