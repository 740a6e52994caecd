package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"user+tag@example.co",
	}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"a@b", // no dot after the @
		"user @example.com",
		"user@ example.com",
		"@example.com",
		"user@",
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestValidSiteURL(t *testing.T) {
	assert.True(t, ValidSiteURL("https://mysite.com"))
	assert.True(t, ValidSiteURL("http://localhost:8080/blog"))

	assert.False(t, ValidSiteURL(""))
	assert.False(t, ValidSiteURL("mysite.com"))
	assert.False(t, ValidSiteURL("not a url"))
	assert.False(t, ValidSiteURL("https://"))
}
