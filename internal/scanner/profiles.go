package scanner

import (
	"fmt"
	"strings"
)

// DefaultProfile is used by boards that do not name a layout.
const DefaultProfile = "default"

// Profile lists the ordered selector candidates for one family of board templates.
type Profile struct {
	Name   string
	Rows   []string
	Dates  []string
	Titles []string
}

// RowGroup joins the row selectors into one CSS group for readiness checks.
func (p Profile) RowGroup() string {
	return strings.Join(p.Rows, ", ")
}

// Registry keeps a mapping from layout names to selector profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a registry preloaded with the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{profiles: map[string]Profile{}}
	for _, p := range builtinProfiles() {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) {
	if r.profiles == nil {
		r.profiles = map[string]Profile{}
	}
	r.profiles[p.Name] = p
}

// Resolve returns a profile by name; empty names resolve to the default layout.
func (r *Registry) Resolve(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	if p, ok := r.profiles[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("layout %s is not registered", name)
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			Name: DefaultProfile,
			Rows: []string{
				"table.board-table tbody tr",
				"table.artclTable tbody tr",
				"div.board-list table tbody tr",
			},
			Dates: []string{
				".td-date",
				"td._artclTdRdate",
				"td.date",
				"td:nth-last-child(2)",
			},
			Titles: []string{
				".td-subject a",
				"td._artclTdTitle a",
				"td.subject a",
				"td.title a",
				"a[href]",
			},
		},
		{
			Name: "list",
			Rows: []string{
				"ul.board-list > li",
				"div.notice-list li",
			},
			Dates: []string{
				".date",
				"span.date",
				"time",
			},
			Titles: []string{
				".subject a",
				".title a",
				"a[href]",
			},
		},
	}
}
