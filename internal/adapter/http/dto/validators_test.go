package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountNumberPattern(t *testing.T) {
	valid := []string{"0000000000", "1234567890", "9999999999"}
	for _, s := range valid {
		assert.True(t, accountNumberRe.MatchString(s), "expected %q to be valid", s)
	}

	invalid := []string{"", "123", "12345678901", "12345abcde", " 1234567890", "123-456-78"}
	for _, s := range invalid {
		assert.False(t, accountNumberRe.MatchString(s), "expected %q to be invalid", s)
	}
}

func TestSanitizeStruct(t *testing.T) {
	type sample struct {
		Name        string
		Description *string
	}

	desc := "  <b>bold</b>  "
	s := &sample{Name: "  Alice <script>  ", Description: &desc}

	SanitizeStruct(s)

	assert.Equal(t, "Alice &lt;script&gt;", s.Name)
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", *s.Description)
}

func TestSanitizeStruct_NonStructIsNoop(t *testing.T) {
	v := "plain"
	SanitizeStruct(&v)
	assert.Equal(t, "plain", v)

	SanitizeStruct(nil)
}
