package access

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Route names used by the router to look up allow-lists
const (
	RouteDashboard    = "dashboard"
	RouteDesignerFlow = "designer-flow"
)

// Policy maps route names to allow-lists
type Policy struct {
	routes map[string]AllowList
}

// DefaultPolicy returns the built-in route allow-lists
func DefaultPolicy() *Policy {
	return &Policy{
		routes: map[string]AllowList{
			RouteDashboard:    DashboardRoot,
			RouteDesignerFlow: DesignerFlow,
		},
	}
}

// For returns the allow-list registered for route
func (p *Policy) For(route string) (AllowList, bool) {
	a, ok := p.routes[route]
	return a, ok
}

// MustFor returns the allow-list for route, panicking when it is not registered.
// Used while building the router, where a missing route is a programming error.
func (p *Policy) MustFor(route string) AllowList {
	a, ok := p.For(route)
	if !ok {
		panic(fmt.Sprintf("access: no allow-list for route %q", route))
	}
	return a
}

// Routes returns the registered route names in sorted order
func (p *Policy) Routes() []string {
	names := make([]string, 0, len(p.routes))
	for name := range p.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File is the on-disk shape of an access policy file:
//
//	routes:
//	  dashboard: [Designer, Admin, User, Editor]
//	  designer-flow: [Designer, Admin]
type File struct {
	Routes map[string][]string `yaml:"routes"`
}

// LoadFile reads an access policy file and applies it on top of base.
// Routes named in the file replace the base allow-list; routes not named keep
// theirs. Unknown routes, unknown role names and empty lists are errors.
func LoadFile(path string, base *Policy) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read access policy file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse access policy file: %w", err)
	}

	return base.Apply(file)
}

// Apply returns a copy of p with the routes in f overridden
func (p *Policy) Apply(f File) (*Policy, error) {
	out := &Policy{routes: make(map[string]AllowList, len(p.routes))}
	for name, a := range p.routes {
		out.routes[name] = a
	}

	for name, roles := range f.Routes {
		if _, ok := p.routes[name]; !ok {
			return nil, fmt.Errorf("route %q: unknown route", name)
		}
		if len(roles) == 0 {
			return nil, fmt.Errorf("route %q: allow-list must name at least one role", name)
		}
		a, err := ParseAllowList(roles...)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", name, err)
		}
		out.routes[name] = a
	}

	return out, nil
}
