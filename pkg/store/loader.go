package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
)

// Loader resolves template names to sources, collapsing concurrent lookups
// of the same name into one backend call.
type Loader struct {
	store  Store
	sf     singleflight.Group
	logger *logging.Logger
}

// NewLoader returns a Loader over store. A nil store serves only the
// built-in templates.
func NewLoader(store Store) *Loader {
	return &Loader{
		store:  store,
		logger: logging.L().Named("store").Named("loader"),
	}
}

// Builtin returns the built-in default template for kind.
func Builtin(kind statement.Kind) Template {
	if kind == "" {
		kind = statement.KindStatement
	}
	return Template{
		Name:    "default-" + string(kind),
		Kind:    kind,
		Format:  statement.FormatHTML,
		Source:  statement.DefaultTemplate(kind),
		Builtin: true,
	}
}

// Load returns the template stored under name. An empty name, or one the
// store does not hold, resolves to the built-in default for kind.
func (l *Loader) Load(ctx context.Context, name string, kind statement.Kind) (Template, error) {
	if name == "" || l.store == nil {
		return Builtin(kind), nil
	}
	if err := ValidateName(name); err != nil {
		return Template{}, err
	}

	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	// The shared lookup keeps the first caller's deadline but not its
	// cancellation. Each caller stops waiting when its own ctx is done.
	ch := l.sf.DoChan(name, func() (interface{}, error) {
		detached, cancel := detach(ctx)
		defer cancel()
		return l.store.Get(detached, name)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Template{}, ctx.Err()
	case res = <-ch:
	}
	result, err, shared := res.Val, res.Err, res.Shared

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.logger.Debug("template not stored, using built-in",
				zap.String("name", name),
				zap.String("kind", string(kind)),
			)
			return Builtin(kind), nil
		}
		return Template{}, err
	}

	if shared {
		l.logger.Debug("template lookup shared", zap.String("name", name))
	}
	return result.(Template), nil
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(base, deadline)
	}
	return context.WithCancel(base)
}
