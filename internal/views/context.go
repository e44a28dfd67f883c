package views

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
)

// Context is the per-request variable mapping a page is rendered against.
// It always carries the inbound request under "request".
type Context map[string]any

// NewContext starts a context for r, seeded with vars.
func NewContext(r *http.Request, vars map[string]any) Context {
	ctx := make(Context, len(vars)+1)
	for k, v := range vars {
		ctx[k] = v
	}
	ctx["request"] = r
	return ctx
}

// With sets key and returns the context for chaining.
func (c Context) With(key string, value any) Context {
	c[key] = value
	return c
}

// Flash is a one-off notice shown above the page content by the "flash" component.
type Flash struct {
	Kind    string // info or error
	Message string
}

// WithFlash attaches a notice to the page.
func (c Context) WithFlash(kind, message string) Context {
	c["flash"] = Flash{Kind: kind, Message: message}
	return c
}

var funcMap = template.FuncMap{
	"dict":        dict,
	"formatDate":  formatDate,
	"formatPrice": formatPrice,
	"upper":       strings.ToUpper,
	"year":        func() int { return time.Now().Year() },
}

// dict builds a map from alternating keys and values so macros can take named arguments:
//
//	{{template "macro.field" dict "name" "email" "label" "Email"}}
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02 Jan 2006, 15:04")
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}
