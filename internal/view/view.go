package view

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// ListTemplate is the admin list page, including the create/edit modal.
const ListTemplate = "content_list.html"

// NavItem is one entry of the sidebar.
type NavItem struct {
	Label  string
	Href   string
	Icon   string
	Active bool
}

// Row is a content record flattened for the list table.
type Row struct {
	ID        string
	Title     string
	Image     string
	Link      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Form holds the modal state. A nil *Form means the modal is closed.
type Form struct {
	Action   string
	ID       string
	Title    string
	Image    string
	Link     string
	IsActive bool
}

// IsEdit reports whether the modal edits an existing record.
func (f *Form) IsEdit() bool {
	return f != nil && f.ID != ""
}

// ListPage is the data rendered by ListTemplate.
type ListPage struct {
	Title      string
	Label      string
	BasePath   string
	ImageLabel string
	LinkLabel  string
	HasLink    bool
	Nav        []NavItem
	Rows       []Row
	Pager      Pager
	Form       *Form
	Flash      string
	Error      string
}

// PageURL returns the list URL for page n.
func (p ListPage) PageURL(n int) string {
	return fmt.Sprintf("%s?page=%d", p.BasePath, n)
}

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"gt": func(a, b int) bool {
			return a > b
		},
		"lt": func(a, b int) bool {
			return a < b
		},
		"icon": IconSVG,
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"query":      url.QueryEscape,
		"videoEmbed": ParseVideoLink,
	}
}

// Templates parses the embedded admin templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}
