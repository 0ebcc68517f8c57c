// Package views renders the HTML pages from typed view models.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/NordCoder/homelab/internal/domain/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type DashboardPage struct {
	Username string
	Services []ServiceRow
}

type ServiceRow struct {
	ID     int64
	Name   string
	URL    string
	Status string
	Badge  string
	Icon   string
}

func NewServiceRow(s *service.Service) ServiceRow {
	row := ServiceRow{ID: s.ID, Name: s.Name, URL: s.URL, Status: s.Status.String()}
	switch s.Status.Class() {
	case "running":
		row.Badge, row.Icon = "bg-success", "🟢"
	case "error":
		row.Badge, row.Icon = "bg-warning text-dark", "🟡"
	case "down":
		row.Badge, row.Icon = "bg-danger", "🔴"
	default:
		row.Badge, row.Icon = "bg-secondary", "⚪"
	}
	return row
}

type Renderer struct {
	t *template.Template
}

func New() (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// MustNew is for tests and wiring where the embedded templates are known to parse.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Login(w http.ResponseWriter) error {
	return r.render(w, http.StatusOK, "login.html", nil)
}

func (r *Renderer) Dashboard(w http.ResponseWriter, page DashboardPage) error {
	return r.render(w, http.StatusOK, "dashboard.html", page)
}

// render executes into a buffer so a template error never leaves a half-written page.
func (r *Renderer) render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
