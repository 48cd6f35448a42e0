package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/99minutos/account-service/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders the transactional emails from the embedded HTML files.
type Templates struct {
	tmpl         *template.Template
	projectName  string
	frontendHost string
	resetTTL     time.Duration
}

// NewTemplates parses the embedded templates. Links point at frontendHost;
// resetTTL is the lifetime quoted in the recovery email (one hour if unset).
func NewTemplates(projectName, frontendHost string, resetTTL time.Duration) (*Templates, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Templates{
		tmpl:         tmpl,
		projectName:  projectName,
		frontendHost: strings.TrimRight(frontendHost, "/"),
		resetTTL:     resetTTL,
	}, nil
}

func (t *Templates) ResetPassword(email, token string) (ports.Email, error) {
	link := t.frontendHost + "/reset-password?token=" + url.QueryEscape(token)
	return t.render("reset_password.html", t.projectName+" - Password recovery for user "+email, map[string]any{
		"ProjectName": t.projectName,
		"Email":       email,
		"Link":        link,
		"ValidFor":    validFor(t.resetTTL),
	})
}

// validFor renders d as whole hours or minutes.
func validFor(d time.Duration) string {
	if d <= 0 {
		d = time.Hour
	}
	if d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d.Round(time.Minute)/time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func (t *Templates) NewAccount(username string) (ports.Email, error) {
	return t.render("new_account.html", "Welcome to "+t.projectName+"!", map[string]any{
		"ProjectName": t.projectName,
		"Username":    username,
		"Link":        t.frontendHost + "/dashboard",
	})
}

func (t *Templates) Test() (ports.Email, error) {
	return t.render("test_email.html", "Test email", map[string]any{
		"ProjectName": t.projectName,
	})
}

func (t *Templates) render(name, subject string, data map[string]any) (ports.Email, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return ports.Email{}, fmt.Errorf("render %s: %w", name, err)
	}
	return ports.Email{Subject: subject, HTMLBody: buf.String()}, nil
}
