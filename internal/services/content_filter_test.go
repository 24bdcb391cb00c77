package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tausug-confession/confession-backend/internal/dto"
)

func TestContentFilter(t *testing.T) {
	f := NewContentFilter()
	cases := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"What a beautiful story", true, ""},
		{"", true, ""},
		{"this is bullshit", false, "inappropriate_language"},
		{"a classic read", true, ""},
		{"see www.example.com for more", false, "url_not_allowed"},
		{"write to me@example.org", false, "contact_info_not_allowed"},
		{"call 555-123-4567", false, "contact_info_not_allowed"},
		{"soooo good", false, "spam_detected"},
		{"why????", false, "spam_detected"},
		{"LOVED THIS STORY SO MUCH", true, ""},
		{"LOVED THIS STORY TRULY AMAZING", false, "excessive_caps"},
	}
	for _, tc := range cases {
		ok, reason := f.Check(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.reason, reason, tc.text)
	}
}

func TestReasonMessage(t *testing.T) {
	assert.Equal(t, "URLs and web links are not allowed.", ReasonMessage("url_not_allowed"))
	assert.Equal(t, "Your comment does not meet our content guidelines.", ReasonMessage("whatever"))
}

func TestValidateStructFieldMessages(t *testing.T) {
	err := validateStruct(&dto.CreateConfessionRequest{Title: "Hi", Category: "gossip", Tags: []string{"ok"}})
	var se *Error
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, KindValidation, se.Kind)
	assert.Equal(t, "title must be at least 5 characters", se.Fields["title"])
	assert.Contains(t, se.Fields["category"], "category must be one of")

	assert.NoError(t, validateStruct(&dto.UpdateRoleRequest{Role: "member"}))
	err = validateStruct(&dto.UpdateRoleRequest{Role: "owner"})
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "role must be one of: user, member, moderator, admin", se.Message)
}
