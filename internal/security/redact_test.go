package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCredential(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcdef", "ab****"},
		{"sk-abcdefghijkl", "sk-a*******ijkl"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskCredential(tt.in), tt.in)
	}
}

func TestRedact(t *testing.T) {
	key := "sk-proj1234567890abcdefWXYZ"

	got := Redact("Incorrect API key provided: " + key + ". You can find your key at ...")
	assert.NotContains(t, got, key)
	assert.Contains(t, got, "sk-p")
	assert.Contains(t, got, "WXYZ")

	got = Redact(`request failed: api_key="hunter2hunter2" status=401`)
	assert.NotContains(t, got, "hunter2hunter2")
	assert.Contains(t, got, "status=401")

	assert.Equal(t, "connection refused", Redact("connection refused"))
}

func TestRedactError(t *testing.T) {
	assert.Empty(t, RedactError(nil))
	assert.Equal(t, "bearer toke*****1234", RedactError(errors.New("bearer token12341234")))
}
