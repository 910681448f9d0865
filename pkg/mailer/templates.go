package mailer

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Message is a rendered email ready for SendEmail.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type WelcomeData struct {
	Name string
}

type EnrollmentData struct {
	Name        string
	CourseTitle string
	CourseURL   string
}

type CertificateData struct {
	Name        string
	CourseTitle string
	Code        string
	VerifyURL   string
}

const layoutHTML = `<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#1f2937">{{template "content" .}}<p style="color:#6b7280;font-size:12px">Viral Academy</p></body></html>`

var (
	welcomeHTML = mustHTML(`{{define "content"}}<h2>Welcome, {{.Name}}!</h2><p>Your Viral Academy account is ready. Subscribe to unlock every course.</p>{{end}}`)
	welcomeText = mustText("Welcome, {{.Name}}!\n\nYour Viral Academy account is ready. Subscribe to unlock every course.\n")

	enrollmentHTML = mustHTML(`{{define "content"}}<h2>You're enrolled!</h2><p>Hi {{.Name}}, you now have access to <b>{{.CourseTitle}}</b>.</p><p><a href="{{.CourseURL}}">Start learning</a></p>{{end}}`)
	enrollmentText = mustText("Hi {{.Name}}, you now have access to {{.CourseTitle}}.\nStart learning: {{.CourseURL}}\n")

	certificateHTML = mustHTML(`{{define "content"}}<h2>Congratulations, {{.Name}}!</h2><p>You completed <b>{{.CourseTitle}}</b>.</p><p>Certificate code: <code>{{.Code}}</code></p><p><a href="{{.VerifyURL}}">Verify certificate</a></p>{{end}}`)
	certificateText = mustText("Congratulations, {{.Name}}!\nYou completed {{.CourseTitle}}.\nCertificate code: {{.Code}}\nVerify: {{.VerifyURL}}\n")
)

func mustHTML(content string) *htmltemplate.Template {
	t := htmltemplate.Must(htmltemplate.New("layout").Parse(layoutHTML))
	return htmltemplate.Must(t.Parse(content))
}

func mustText(content string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New("text").Parse(content))
}

func render(subject string, h *htmltemplate.Template, t *texttemplate.Template, data any) (Message, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := h.Execute(&htmlBuf, data); err != nil {
		return Message{}, err
	}
	if err := t.Execute(&textBuf, data); err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, HTML: htmlBuf.String(), Text: textBuf.String()}, nil
}

func Welcome(data WelcomeData) (Message, error) {
	return render("Welcome to Viral Academy", welcomeHTML, welcomeText, data)
}

func Enrollment(data EnrollmentData) (Message, error) {
	return render("Enrolled: "+data.CourseTitle, enrollmentHTML, enrollmentText, data)
}

func Certificate(data CertificateData) (Message, error) {
	return render("Your certificate for "+data.CourseTitle, certificateHTML, certificateText, data)
}
