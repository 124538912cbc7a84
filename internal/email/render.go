package email

import (
	"fmt"
	"regexp"

	"github.com/a-h/templ"
)

var (
	placeholder = regexp.MustCompile(`\{\{([a-z0-9_]+)\}\}`)
	validKey    = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Template is a stored email template with {{key}} placeholders
type Template struct {
	Name      string
	Subject   string
	HTML      string
	Text      string
	Variables []string
}

// Vars is the variable bag substituted into a template
type Vars map[string]string

// Validate rejects keys that could never match a placeholder
func (v Vars) Validate() error {
	for key := range v {
		if !validKey.MatchString(key) {
			return fmt.Errorf("invalid template variable name %q", key)
		}
	}
	return nil
}

// Rendered is the output of Render
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Render substitutes vars into t. Values are HTML-escaped in the HTML body
// and inserted verbatim into the subject and text body. Placeholders with no
// matching variable render as the empty string.
func Render(t Template, vars Vars) (Rendered, error) {
	if err := vars.Validate(); err != nil {
		return Rendered{}, err
	}

	return Rendered{
		Subject: substitute(t.Subject, vars, false),
		HTML:    substitute(t.HTML, vars, true),
		Text:    substitute(t.Text, vars, false),
	}, nil
}

func substitute(src string, vars Vars, escape bool) string {
	return placeholder.ReplaceAllStringFunc(src, func(m string) string {
		value := vars[placeholder.FindStringSubmatch(m)[1]]
		if escape {
			return templ.EscapeString(value)
		}
		return value
	})
}
