package routing

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Allowlist struct {
	Version     int                   `yaml:"version"`
	Entrypoints map[string]Entrypoint `yaml:"entrypoints"`
}

type Entrypoint struct {
	Routes []Route `yaml:"routes"`
}

type Route struct {
	Path       string   `yaml:"path"`
	Methods    []string `yaml:"methods"`
	RouteClass string   `yaml:"route_class"`
	Auth       string   `yaml:"auth"`
}

const (
	AuthNone  = "none"
	AuthBasic = "basic"
)

func (r Route) RequiresAuth() bool {
	return strings.TrimSpace(r.Auth) == AuthBasic
}

func (r Route) Allows(method string) bool {
	for _, m := range r.Methods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}

func ParseAllowlistYAML(b []byte) (Allowlist, error) {
	var a Allowlist
	if err := yaml.Unmarshal(b, &a); err != nil {
		return Allowlist{}, err
	}
	if a.Version != 1 {
		return Allowlist{}, errors.New("allowlist: unsupported version")
	}
	if a.Entrypoints == nil {
		return Allowlist{}, errors.New("allowlist: missing entrypoints")
	}
	for name, ep := range a.Entrypoints {
		for _, r := range ep.Routes {
			switch strings.TrimSpace(r.Auth) {
			case "", AuthNone, AuthBasic:
			default:
				return Allowlist{}, fmt.Errorf("allowlist: %s %s: unknown auth %q", name, r.Path, r.Auth)
			}
		}
	}
	return a, nil
}

func LoadAllowlist(path string) (Allowlist, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Allowlist{}, err
	}
	return ParseAllowlistYAML(b)
}

// Find returns the allowlisted route declared for path, matching patterns
// such as /hierarchy/{name} segment by segment.
func (a Allowlist) Find(entrypoint string, path string) (Route, bool) {
	ep, ok := a.Entrypoints[entrypoint]
	if !ok {
		return Route{}, false
	}
	for _, r := range ep.Routes {
		if r.Path == path {
			return r, true
		}
	}
	for _, r := range ep.Routes {
		if p, ok := parsePathPattern(r.Path); ok && p.Match(path) {
			return r, true
		}
	}
	return Route{}, false
}
