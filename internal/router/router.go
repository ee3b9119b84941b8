// Package router resolves navigation paths to pages.
package router

import "strings"

// Page identifies a routed view
type Page int

const (
	PageHome Page = iota
	PageStudentList
	PageAssignClass
	PageInfo
	PageNotFound
)

// Route is a resolved path. Segments is set only for PageNotFound and holds
// the unmatched path split on "/".
type Route struct {
	Page     Page
	Segments []string
}

// Entry describes a page shown in the sidebar
type Entry struct {
	Page  Page
	Path  string
	Title string
	Icon  string
}

// Entries returns the sidebar pages in display order
func Entries() []Entry {
	return []Entry{
		{Page: PageHome, Path: "/", Title: "Home", Icon: "🏠"},
		{Page: PageStudentList, Path: "/student-list", Title: "Students", Icon: "📝"},
		{Page: PageAssignClass, Path: "/assign-class", Title: "Assign Classes", Icon: "😃"},
		{Page: PageInfo, Path: "/info", Title: "Info", Icon: "💁"},
	}
}

// Parse resolves a path. Trailing slashes and a missing leading slash are
// tolerated; anything else unknown resolves to PageNotFound.
func Parse(path string) Route {
	segments := split(path)
	if len(segments) == 0 {
		return Route{Page: PageHome}
	}
	if len(segments) == 1 {
		for _, e := range Entries() {
			if e.Path == "/"+segments[0] {
				return Route{Page: e.Page}
			}
		}
	}
	return Route{Page: PageNotFound, Segments: segments}
}

// Path returns the canonical path for a route
func (r Route) Path() string {
	if r.Page == PageNotFound {
		return "/" + strings.Join(r.Segments, "/")
	}
	return r.Page.Path()
}

// Path returns the canonical path of a sidebar page
func (p Page) Path() string {
	for _, e := range Entries() {
		if e.Page == p {
			return e.Path
		}
	}
	return ""
}

// Title returns the sidebar title of a page
func (p Page) Title() string {
	for _, e := range Entries() {
		if e.Page == p {
			return e.Title
		}
	}
	return "Not Found"
}

// Match returns the sidebar entries whose path starts with prefix
func Match(prefix string) []Entry {
	var out []Entry
	for _, e := range Entries() {
		if strings.HasPrefix(e.Path, prefix) {
			out = append(out, e)
		}
	}
	return out
}

func split(path string) []string {
	var segments []string
	for _, s := range strings.Split(strings.TrimSpace(path), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
