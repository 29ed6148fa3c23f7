// Package views renders the cart-dependent page fragments. Every adapter
// re-renders from a services.CartReader and never mutates the cart.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Renderer struct {
	tmpl     *template.Template
	currency string
}

func NewRenderer(currency string) (*Renderer, error) {
	r := &Renderer{currency: currency}

	tmpl, err := template.New("views").
		Funcs(template.FuncMap{"price": r.Price}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Templates exposes the parsed set for gin's HTML renderer.
func (r *Renderer) Templates() *template.Template {
	return r.tmpl
}

func (r *Renderer) Price(amount int) string {
	return fmt.Sprintf("%d %s", amount, r.currency)
}

func (r *Renderer) render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
