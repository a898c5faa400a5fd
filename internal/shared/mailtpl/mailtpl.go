// Package mailtpl renders the passcode email.
package mailtpl

import (
	"bytes"
	_ "embed"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
)

const Subject = "Passkeys Revoke Request"

var (
	//go:embed passcode.html
	passcodeHTML string
	//go:embed passcode.txt
	passcodeText string

	htmlTpl = htmltemplate.Must(htmltemplate.New("passcode.html").Option("missingkey=error").Parse(passcodeHTML))
	textTpl = texttemplate.Must(texttemplate.New("passcode.txt").Option("missingkey=error").Parse(passcodeText))
)

type Passcode struct {
	To        string
	Code      string
	ExpiresAt time.Time
	Now       time.Time
}

type passcodeData struct {
	Code         string
	ValidMinutes int
	ExpiresAt    string
}

// Render builds the message for p. The sender is left to the mail driver's default.
func Render(p Passcode) (mail.Message, error) {
	minutes := int(p.ExpiresAt.Sub(p.Now).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	data := passcodeData{
		Code:         p.Code,
		ValidMinutes: minutes,
		ExpiresAt:    p.ExpiresAt.UTC().Format("15:04 MST"),
	}

	var html, text bytes.Buffer
	if err := htmlTpl.Execute(&html, data); err != nil {
		return mail.Message{}, err
	}
	if err := textTpl.Execute(&text, data); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:       []string{p.To},
		Subject:  Subject,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
