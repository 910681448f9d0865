package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentTemplateEscapesHTML(t *testing.T) {
	msg, err := Enrollment(EnrollmentData{
		Name:        "<script>alert(1)</script>",
		CourseTitle: "Short-form Video 101",
		CourseURL:   "https://viralacademy.com/courses/short-form-video-101",
	})
	require.NoError(t, err)

	assert.Equal(t, "Enrolled: Short-form Video 101", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Text, "https://viralacademy.com/courses/short-form-video-101")
}

func TestCertificateTemplate(t *testing.T) {
	msg, err := Certificate(CertificateData{Name: "Ana", CourseTitle: "Hooks", Code: "VA-1234", VerifyURL: "https://x/verify/VA-1234"})
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "VA-1234")
	assert.Contains(t, msg.Text, "Congratulations, Ana!")
}

func TestNewWithoutHostLogs(t *testing.T) {
	m := New(SMTPConfig{})
	assert.NoError(t, m.SendEmail(context.Background(), "a@b.c", "hi", "<p>hi</p>", "hi"))
}
