// Package store persists named statement and voucher templates.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
)

// Common store errors. Backends wrap these so callers can use errors.Is.
var (
	// ErrNotFound is returned when no template exists under the requested name
	ErrNotFound = errors.New("store: template not found")

	// ErrInvalidName is returned for names outside [A-Za-z0-9_-]{1,64}
	ErrInvalidName = errors.New("store: invalid template name")

	// ErrUnavailable is returned when a backend cannot serve requests
	ErrUnavailable = errors.New("store: backend unavailable")
)

// IsNotFound reports whether err means the template does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable reports whether err means the backend is down or tripped.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateName checks that name can be used as a template key.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Template is a stored template source.
type Template struct {
	Name      string           `json:"name"`
	Kind      statement.Kind   `json:"kind"`
	Format    statement.Format `json:"format"`
	Source    string           `json:"source"`
	UpdatedAt time.Time        `json:"updatedAt"`
	// Builtin is set when the template came from the engine defaults
	// rather than a backend.
	Builtin bool `json:"builtin,omitempty"`
}

// normalize fills in the kind and format defaults.
func (t *Template) normalize() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.Kind == "" {
		t.Kind = statement.KindStatement
	}
	if _, ok := statement.ParseKind(string(t.Kind)); !ok {
		return fmt.Errorf("store: unknown template kind %q", t.Kind)
	}
	if t.Format == "" {
		t.Format = statement.FormatHTML
	}
	if _, ok := statement.ParseFormat(string(t.Format)); !ok {
		return fmt.Errorf("store: unknown template format %q", t.Format)
	}
	return nil
}

// Store is implemented by every template backend.
type Store interface {
	Get(ctx context.Context, name string) (Template, error)
	Put(ctx context.Context, tmpl Template) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Template, error)
}

func sortByName(templates []Template) {
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
}
