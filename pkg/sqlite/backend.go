// Package sqlite provides the public API for the SQLite container backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithLogger sets the logger for lifecycle and mutation events. Backends
// log nothing by default.
func WithLogger(l zerolog.Logger) Option {
	return sqlite.WithLogger(l)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	c := sqlite.NewBackend()
//	err := c.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".nodeattrs-db",
//	})
//	defer c.Detach()
//	root, _ := c.Root()
//	err = root.Attrs().Set(types.TextName("gain"), types.Scalar(4.0))
func NewBackend(opts ...Option) types.Container {
	return sqlite.NewBackend(opts...)
}
