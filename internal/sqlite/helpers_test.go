package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// attachTestBackend attaches a backend in a temp dir and detaches it when
// the test ends.
func attachTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func rootAttrs(t *testing.T, b *Backend) types.AttributeTable {
	t.Helper()
	root, err := b.Root()
	require.NoError(t, err)
	return root.Attrs()
}

func mustArray[T types.Element](t *testing.T, data []T, shape ...int) types.Value {
	t.Helper()
	v, err := types.Array(data, shape...)
	require.NoError(t, err)
	return v
}
