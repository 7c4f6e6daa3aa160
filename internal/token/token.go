// Package token picks the API credential from a prioritized list of
// environment-style sources.
package token

import (
	"os"
	"strings"
)

// DefaultSources is the lookup order used when none is configured.
const DefaultSources = "GITHUB_TOKEN,TOKEN"

// LookupFunc returns the value of a named source and whether it was set.
type LookupFunc func(name string) (string, bool)

// Resolver returns the first non-empty credential among its sources.
type Resolver struct {
	sources []string
	lookup  LookupFunc
}

// NewResolver creates a resolver over the given source names.
// A nil lookup reads the process environment.
func NewResolver(sources []string, lookup LookupFunc) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{sources: sources, lookup: lookup}
}

// ParseSources splits a comma separated list of source names,
// dropping blank entries.
func ParseSources(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Resolve returns the credential and true, or "" and false when no source
// holds a value. Running without a credential is allowed.
func (r *Resolver) Resolve() (string, bool) {
	for _, name := range r.sources {
		if v, ok := r.lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
