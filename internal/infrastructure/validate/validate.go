// Package validate checks request path and body identifiers. Every failure
// wraps domain.ErrInvalidParameter.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hilthontt/breakout/internal/domain"
)

type Validator func(value string) error

// Field runs validators in order and prefixes the first failure with name.
func Field(name string, validators ...Validator) Validator {
	return func(value string) error {
		if err := Compose(validators...)(value); err != nil {
			return fmt.Errorf("%w: %s %s", domain.ErrInvalidParameter, name, err.Error())
		}
		return nil
	}
}

func Compose(validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}

func Required() Validator {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("is required")
		}
		return nil
	}
}

func MaxLength(max int) Validator {
	return func(v string) error {
		if len(v) > max {
			return fmt.Errorf("must be no more than %d characters", max)
		}
		return nil
	}
}

func Matches(pattern, message string) Validator {
	re := regexp.MustCompile(pattern)
	return func(v string) error {
		if v == "" {
			return nil
		}
		if !re.MatchString(v) {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}

func OneOf(allowed ...string) Validator {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return func(v string) error {
		if !set[v] {
			return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
		}
		return nil
	}
}

// Identifier accepts meeting, room, user and transfer IDs.
func Identifier(name string) Validator {
	return Field(name,
		Required(),
		MaxLength(128),
		Matches(`^[A-Za-z0-9_.:-]+$`, "may only contain letters, digits and _ . : -"),
	)
}

// All returns the first failing pair of (validator, value).
func All(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func Check(v Validator, value string) func() error {
	return func() error { return v(value) }
}
