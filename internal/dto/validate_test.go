package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessages(t *testing.T) {
	cases := []struct {
		req  interface{}
		want string
	}{
		{&RegisterRequest{Password: "password123"}, "email is required"},
		{&RegisterRequest{Email: "nope", Password: "password123"}, "email must be a valid email address"},
		{&RegisterRequest{Email: "a@b.co", Password: "short"}, "password must be at least 8 characters"},
		{&AnalyzeLogRequest{ProjectID: "6b1f4a57-1b7e-4c53-a8d3-0c6c5e1d2f10"}, "text is required"},
		{&AnalyzeLogRequest{Text: "x", ProjectID: "P1"}, "project_id must be a valid id"},
		{&CreateServiceRequest{Name: "api", URL: "not a url", ProjectID: "6b1f4a57-1b7e-4c53-a8d3-0c6c5e1d2f10"}, "url must be a valid URL"},
		{&WebhookLogRequest{ProjectID: "6b1f4a57-1b7e-4c53-a8d3-0c6c5e1d2f10"}, "error_text is required"},
	}
	for _, tc := range cases {
		err := Validate(tc.req)
		if assert.Error(t, err) {
			assert.Equal(t, tc.want, err.Error())
		}
	}
}

func TestValidateOptionalPointers(t *testing.T) {
	assert.NoError(t, Validate(&UpdateProjectRequest{}))

	empty := ""
	err := Validate(&UpdateProjectRequest{Name: &empty})
	assert.EqualError(t, err, "name must be at least 1 characters")

	negative := -1
	err = Validate(&UpdateSettingsRequest{Thresholds: &ThresholdsPatch{ResponseTime: &negative}})
	assert.EqualError(t, err, "response_time must be at least 1")
}
