package notify

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"sync"

	"github.com/Masterminds/sprig/v3"
)

// Renderer renders email bodies from HTML templates. Parsed templates are
// cached by content hash.
type Renderer struct {
	mu        sync.Mutex
	templates map[string]*template.Template
}

// NewRenderer creates a new template renderer
func NewRenderer() *Renderer {
	return &Renderer{
		templates: make(map[string]*template.Template),
	}
}

// generateTemplateName generates a unique name for a template based on its content
func generateTemplateName(tmpl string) string {
	hash := sha256.Sum256([]byte(tmpl))
	return fmt.Sprintf("tmpl_%s", hex.EncodeToString(hash[:8]))
}

// Render renders a template with the given data
func (r *Renderer) Render(tmpl string, data any) (string, error) {
	name := generateTemplateName(tmpl)

	r.mu.Lock()
	t, ok := r.templates[name]
	if !ok {
		var err error
		t, err = template.New(name).Funcs(sprig.HtmlFuncMap()).Parse(tmpl)
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		r.templates[name] = t
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
