package views

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"
	"time"
)

var pageTmpl *template.Template

var errNotLoaded = errors.New("templates not loaded: call views.LoadTemplates during startup")

// Tab is one dashboard tab.
type Tab struct {
	ID    string
	Label string
}

const DefaultTab = "dashboard"

var tabs = []Tab{
	{ID: "dashboard", Label: "Dashboard"},
	{ID: "predictions", Label: "AI Alerts"},
	{ID: "devices", Label: "Devices"},
	{ID: "medication", Label: "Medication"},
	{ID: "environment", Label: "Environment"},
	{ID: "doctor", Label: "Doctor"},
}

// Tabs returns the tabs in display order.
func Tabs() []Tab {
	return append([]Tab(nil), tabs...)
}

// LookupTab reports whether id names a tab.
func LookupTab(id string) (Tab, bool) {
	for _, t := range tabs {
		if t.ID == id {
			return t, true
		}
	}
	return Tab{}, false
}

// PageData is the view model for the full page. Content is the active tab's model.
type PageData struct {
	Tabs    []Tab
	Active  string
	Content any
}

// NavData drives the tab bar. OOB marks it for an HTMX out-of-band swap so a
// partial response also moves the active tab.
type NavData struct {
	Tabs   []Tab
	Active string
	OOB    bool
}

func (p *PageData) Nav() NavData {
	return NavData{Tabs: p.Tabs, Active: p.Active}
}

var funcs = template.FuncMap{
	"badgeClass": badgeClass,
	"textClass":  textClass,
	"num":        num,
	"pct":        pct,
	"clock":      func(t time.Time) string { return t.UTC().Format("15:04") },
	"stamp":      func(t time.Time) string { return t.UTC().Format("Jan 2, 15:04") },
	"width":      width,
	"thousands":  thousands,
	"tenths":     func(v float64) float64 { return v * 10 },
	"list":       func(v ...any) []any { return v },
}

// loadTemplatesFromFS loads page and partial templates from the given fs and dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	t, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	for _, tab := range tabs {
		if t.Lookup(tabTemplate(tab.ID)) == nil {
			return fmt.Errorf("missing template %q", tabTemplate(tab.ID))
		}
	}
	if t.Lookup(navTemplate) == nil {
		return fmt.Errorf("missing template %q", navTemplate)
	}
	pageTmpl = t
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

const navTemplate = "tab-nav"

func tabTemplate(id string) string { return "tab-" + id }

// RenderPage executes the full page with the active tab inlined.
func RenderPage(w io.Writer, data *PageData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// RenderTab executes one tab's partial for an HTMX swap, preceded by an
// out-of-band tab bar with that tab marked active.
func RenderTab(w io.Writer, tab string, content any) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	if _, ok := LookupTab(tab); !ok {
		return fmt.Errorf("unknown tab %q", tab)
	}
	nav := NavData{Tabs: Tabs(), Active: tab, OOB: true}
	if err := pageTmpl.ExecuteTemplate(w, navTemplate, nav); err != nil {
		return err
	}
	return pageTmpl.ExecuteTemplate(w, tabTemplate(tab), content)
}

var palette = map[string]string{
	"green":  "bg-green-50 text-green-700 border-green-200",
	"yellow": "bg-yellow-50 text-yellow-800 border-yellow-200",
	"orange": "bg-orange-50 text-orange-700 border-orange-200",
	"red":    "bg-red-50 text-red-700 border-red-200",
	"blue":   "bg-blue-50 text-blue-700 border-blue-200",
	"purple": "bg-purple-50 text-purple-700 border-purple-200",
}

func badgeClass(color string) string {
	if c, ok := palette[color]; ok {
		return c
	}
	return "bg-gray-50 text-gray-700 border-gray-200"
}

func textClass(color string) string {
	switch color {
	case "green", "yellow", "orange", "red", "blue", "purple":
		return "text-" + color + "-600"
	default:
		return "text-gray-600"
	}
}

// num formats an optional value; nil renders as an em-dash placeholder.
func num(v *float64) string {
	if v == nil {
		return "—"
	}
	return trimFloat(*v)
}

func pct(v float64) string {
	return trimFloat(v) + "%"
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// width clamps a percentage for CSS bar widths.
func width(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// thousands groups the digits of a count with commas.
func thousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
