package config

import (
	"fmt"
	"os"
	"strings"
)

// Resolver expands environment variable references in configuration values.
type Resolver struct {
	lookup func(string) (string, bool)
}

// NewResolver creates a resolver over the process environment.
func NewResolver() *Resolver {
	return &Resolver{lookup: os.LookupEnv}
}

// Resolve returns value with a leading $VAR or ${VAR} replaced by the
// variable's value. Other values are returned unchanged. An unset or empty
// variable is an error.
func (r *Resolver) Resolve(value string) (string, error) {
	if !strings.HasPrefix(value, "$") {
		return value, nil
	}

	name := strings.TrimPrefix(value, "$")
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		name = name[1 : len(name)-1]
	}
	if name == "" {
		return "", fmt.Errorf("empty variable reference %q", value)
	}

	resolved, ok := r.lookup(name)
	if !ok || resolved == "" {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return resolved, nil
}
