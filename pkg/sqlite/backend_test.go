package sqlite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nodeattrs/pkg/sqlite"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

func TestNewBackend_AttributeAccess(t *testing.T) {
	c := sqlite.NewBackend()
	require.NoError(t, c.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer c.Detach()

	root, err := c.Root()
	require.NoError(t, err)
	attrs := root.Attrs()

	require.NoError(t, attrs.Set(types.TextName("a"), types.Scalar(4.0)))
	arr, err := types.Array([]float64{1})
	require.NoError(t, err)
	require.NoError(t, attrs.Set(types.TextName("b"), arr))

	got, err := attrs.Get(types.TextName("b"))
	require.NoError(t, err)
	assert.Equal(t, "(1,)", got.Shape().String())

	_, err = attrs.Get(types.TextName("missing"))
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}
