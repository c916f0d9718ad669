package email

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"churchadmin/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// ErrUnknownTemplate is returned for a template name with no html body on disk.
var ErrUnknownTemplate = errors.New("unknown email template")

// Each mail is three files under templates/: <name>.html, <name>.txt and
// <name>_subject.txt. All of them are parsed once, when the renderer is built.
type templateRenderer struct {
	html *template.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses the embedded church mail templates.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		html: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		text: texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt")),
	}
}

// Render executes the named mail, e.g. domain.EmailTemplatePasswordReset.
// The subject is folded onto one line since it becomes a mail header.
func (r *templateRenderer) Render(name string, data any) (subject, htmlBody, textBody string, err error) {
	if r.html.Lookup(name+".html") == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	var buf strings.Builder
	if err := r.text.ExecuteTemplate(&buf, name+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	subject = strings.Join(strings.Fields(buf.String()), " ")

	buf.Reset()
	if err := r.html.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := r.text.ExecuteTemplate(&buf, name+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	return subject, htmlBody, buf.String(), nil
}
