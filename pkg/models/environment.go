package models

import (
	"errors"
	"fmt"
	"strings"
)

// Environment is the study environment a user focuses in.
type Environment string

const (
	EnvironmentOffice     Environment = "office"
	EnvironmentPark       Environment = "park"
	EnvironmentHome       Environment = "home"
	EnvironmentCoffeeShop Environment = "coffee-shop"
	EnvironmentLibrary    Environment = "library"
)

// DefaultEnvironment is used when no store holds a value.
const DefaultEnvironment = EnvironmentOffice

// ThemeClassPrefix prefixes the document class applied for an environment.
const ThemeClassPrefix = "theme-"

// ErrInvalidEnvironment is returned when a value is not one of the known environments.
var ErrInvalidEnvironment = errors.New("invalid environment")

var allEnvironments = []Environment{
	EnvironmentOffice,
	EnvironmentPark,
	EnvironmentHome,
	EnvironmentCoffeeShop,
	EnvironmentLibrary,
}

// AllEnvironments returns every known environment in display order.
func AllEnvironments() []Environment {
	out := make([]Environment, len(allEnvironments))
	copy(out, allEnvironments)
	return out
}

// ParseEnvironment parses s into an Environment.
// Surrounding whitespace and letter case are ignored.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(s)))
	if !env.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEnvironment, s)
	}
	return env, nil
}

// Valid reports whether e is one of the known environments.
func (e Environment) Valid() bool {
	for _, known := range allEnvironments {
		if e == known {
			return true
		}
	}
	return false
}

// IsZero reports whether no environment is set.
func (e Environment) IsZero() bool { return e == "" }

func (e Environment) String() string { return string(e) }

// ThemeClass returns the document class that marks e, for example "theme-park".
func (e Environment) ThemeClass() string {
	return ThemeClassPrefix + string(e)
}

// ThemeClasses returns the theme class of every known environment.
// The visual marker removes all of them before applying a new one.
func ThemeClasses() []string {
	classes := make([]string, 0, len(allEnvironments))
	for _, env := range allEnvironments {
		classes = append(classes, env.ThemeClass())
	}
	return classes
}
