// Package marker implements the Visual Marker store.
//
// A Document models the root element of the rendered page: a class list and
// a set of attributes. Marker applies the environment to it by removing every
// known theme class, adding theme-<environment> and setting the
// data-environment attribute, but only while the current route supports
// themed visuals. On other routes the document is never touched.
package marker

import (
	"sort"
	"strings"
	"sync"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// EnvironmentAttribute is the document attribute carrying the environment.
const EnvironmentAttribute = "data-environment"

// DefaultThemedRoutes are the route prefixes that render themed visuals.
var DefaultThemedRoutes = []string{"/dashboard", "/focus", "/tasks", "/timer"}

// Document is the root element the marker writes to.
type Document struct {
	mu      sync.RWMutex
	classes map[string]struct{}
	attrs   map[string]string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		classes: make(map[string]struct{}),
		attrs:   make(map[string]string),
	}
}

func (d *Document) AddClass(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		d.classes[n] = struct{}{}
	}
}

func (d *Document) RemoveClass(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		delete(d.classes, n)
	}
}

func (d *Document) HasClass(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.classes[name]
	return ok
}

// Classes returns the class list in sorted order.
func (d *Document) Classes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.classes))
	for c := range d.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (d *Document) SetAttribute(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attrs[name] = value
}

func (d *Document) Attribute(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.attrs[name]
	return v, ok
}

// swapTheme replaces every theme class with env's and sets data-environment
// in one step, so readers never see two themes.
func (d *Document) swapTheme(env models.Environment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range models.ThemeClasses() {
		delete(d.classes, c)
	}
	d.classes[env.ThemeClass()] = struct{}{}
	d.attrs[EnvironmentAttribute] = string(env)
}

// Marker is the VisualMarker over a Document.
type Marker struct {
	doc    *Document
	routes []string

	mu    sync.RWMutex
	route string
}

var _ store.VisualMarker = (*Marker)(nil)

// New creates a marker on doc. themedRoutes are route prefixes that render
// themed visuals; nil selects DefaultThemedRoutes.
func New(doc *Document, themedRoutes []string) *Marker {
	if themedRoutes == nil {
		themedRoutes = DefaultThemedRoutes
	}
	return &Marker{doc: doc, routes: themedRoutes}
}

// Document returns the document the marker writes to.
func (m *Marker) Document() *Document { return m.doc }

// Navigate records the current route.
func (m *Marker) Navigate(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route = route
}

// Route returns the current route.
func (m *Marker) Route() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.route
}

// Themed reports whether the current route applies environment theming.
func (m *Marker) Themed() bool {
	route := m.Route()
	for _, prefix := range m.routes {
		if route == prefix || strings.HasPrefix(route, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// Current returns the environment in the data-environment attribute.
func (m *Marker) Current() (models.Environment, bool) {
	v, ok := m.doc.Attribute(EnvironmentAttribute)
	if !ok || v == "" {
		return "", false
	}
	env := models.Environment(v)
	if !env.Valid() {
		return "", false
	}
	return env, true
}

// Apply swaps the theme class and sets data-environment. It does nothing and
// returns false on routes without themed visuals.
func (m *Marker) Apply(env models.Environment) bool {
	if !m.Themed() || !env.Valid() {
		return false
	}
	m.doc.swapTheme(env)
	return true
}
