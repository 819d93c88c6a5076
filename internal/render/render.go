// Package render turns view state into HTML. Rendering is a pure function of
// the loading flag, the current data and the theme flag.
package render

import (
	"embed"
	"html/template"
	"io"

	"jobscraper-web/internal/domain"
	"jobscraper-web/internal/view"
)

const Title = "AngelList Job Scraper"

//go:embed templates/*.tmpl
var files embed.FS

var tmpl = template.Must(template.New("render").Funcs(template.FuncMap{
	"jobURL":      JobURL,
	"loaderColor": LoaderColor,
	"themeLabel":  ThemeLabel,
	"themeIcon":   themeIcon,
}).ParseFS(files, "templates/*.tmpl"))

type GridData struct {
	IsLoading  bool
	Data       *domain.JobData
	IsDarkMode bool
	LinkOrigin string
	// Rev is the state revision this grid was rendered from.
	Rev uint64
}

type RoleOption struct {
	ID       string
	Label    string
	Selected bool
}

type PageData struct {
	Title  string
	ViewID string
	Roles  []RoleOption
	Grid   GridData
}

func GridFromState(s view.State, linkOrigin string) GridData {
	return GridData{
		IsLoading:  s.IsLoading,
		Data:       s.CurrentData,
		IsDarkMode: s.IsDarkMode,
		LinkOrigin: linkOrigin,
		Rev:        s.Rev,
	}
}

func PageFromState(viewID string, s view.State, linkOrigin string) PageData {
	return PageData{
		Title:  Title,
		ViewID: viewID,
		Roles:  RoleOptions(s.SelectedRole),
		Grid:   GridFromState(s, linkOrigin),
	}
}

// RoleOptions lists every role in order with its label, marking selected.
func RoleOptions(selected domain.Role) []RoleOption {
	roles := domain.Roles()
	out := make([]RoleOption, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleOption{ID: string(r), Label: r.Label(), Selected: r == selected})
	}
	return out
}

func Grid(w io.Writer, d GridData) error {
	return tmpl.ExecuteTemplate(w, "grid", d)
}

func Page(w io.Writer, d PageData) error {
	return tmpl.ExecuteTemplate(w, "page", d)
}

// JobURL joins the fixed external origin and a posting's relative path.
func JobURL(origin, link string) string {
	return origin + link
}

func LoaderColor(dark bool) string {
	if dark {
		return "#ffffff"
	}
	return "#000000"
}

func ThemeLabel(dark bool) string {
	if dark {
		return "Switch to light mode"
	}
	return "Switch to dark mode"
}

func themeIcon(dark bool) string {
	if dark {
		return "☀" // sun
	}
	return "☾" // moon
}
