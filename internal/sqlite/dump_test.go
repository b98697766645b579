package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// seedBackend populates a backend with a small tree covering every value
// kind and an opaque key.
func seedBackend(t *testing.T, b *Backend) {
	t.Helper()
	root := rootAttrs(t, b)
	require.NoError(t, root.Set(types.TextName("title"), types.Text("run 7")))
	require.NoError(t, root.Set(types.TextName("gain"), types.Scalar(4.0)))
	require.NoError(t, root.Set(types.ByteName("raw\xfe"), types.Scalar(int16(-3))))

	g, err := b.CreateGroup("/data")
	require.NoError(t, err)
	require.NoError(t, g.Attrs().Set(types.TextName("window"), mustArray(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)))
	require.NoError(t, g.Attrs().Set(types.TextName("one"), mustArray(t, []uint32{9})))
}

func TestDump_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSONL, FormatCBOR} {
		t.Run(format, func(t *testing.T) {
			src := attachTestBackend(t)
			seedBackend(t, src)

			path := filepath.Join(t.TempDir(), "dump."+format)
			stats, err := src.Export(path, format)
			require.NoError(t, err)
			assert.Equal(t, DumpStats{Nodes: 2, Attributes: 5}, stats)

			dst := attachTestBackend(t)
			stats, err = dst.Import(path, format)
			require.NoError(t, err)
			assert.Equal(t, 1, stats.Nodes, "root already exists")
			assert.Equal(t, 5, stats.Attributes)

			root := rootAttrs(t, dst)
			names, err := root.Names()
			require.NoError(t, err)
			assert.Equal(t, []string{"title", "gain", `"raw\xfe"`}, names)

			got, err := root.Get(types.ByteName("raw\xfe"))
			require.NoError(t, err)
			assert.True(t, got.Equal(types.Scalar(int16(-3))))

			g, err := dst.Group("/data")
			require.NoError(t, err)
			got, err = g.Attrs().Get(types.TextName("window"))
			require.NoError(t, err)
			assert.True(t, got.Equal(mustArray(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)))

			got, err = g.Attrs().Get(types.TextName("one"))
			require.NoError(t, err)
			assert.Equal(t, "(1,)", got.Shape().String())
		})
	}
}

func TestDump_ImportSkipsMalformedJSONLLines(t *testing.T) {
	src := attachTestBackend(t)
	seedBackend(t, src)
	path := filepath.Join(t.TempDir(), "dump.jsonl")
	_, err := src.Export(path, FormatJSONL)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(data), "\n")
	corrupted := lines[0] + "{not json\n" + `{"kind":"other"}` + "\n" + strings.Join(lines[1:], "")
	require.NoError(t, os.WriteFile(path, []byte(corrupted), 0o644))

	dst := attachTestBackend(t)
	stats, err := dst.Import(path, FormatJSONL)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Attributes)
}

func TestDump_ImportIsAllOrNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	content := `{"kind":"attribute","path":"/","name":"ok","dtype":"uint8","shape":[],"payload":"Bw=="}
{"kind":"attribute","path":"/","name":"bad","dtype":"float64","shape":[2],"payload":"Bw=="}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b := attachTestBackend(t)
	_, err := b.Import(path, FormatJSONL)
	require.ErrorIs(t, err, types.ErrUnsupportedValue)

	n, err := rootAttrs(t, b).Len()
	require.NoError(t, err)
	assert.Zero(t, n, "no record from a failed import is kept")
}

func TestDump_ImportMissingNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orphan.jsonl")
	content := `{"kind":"attribute","path":"/nowhere","name":"a","dtype":"uint8","shape":[],"payload":"Bw=="}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b := attachTestBackend(t)
	_, err := b.Import(path, FormatJSONL)
	assert.ErrorIs(t, err, types.ErrNodeNotFound)
}

func TestDump_ImportNodeWithoutParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orphan-node.jsonl")
	content := `{"kind":"node","path":"/x/y"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b := attachTestBackend(t)
	_, err := b.Import(path, FormatJSONL)
	require.ErrorIs(t, err, types.ErrNodeNotFound)

	paths, err := b.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"/"}, paths)
}

func TestDump_ImportNestedNodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.jsonl")
	content := `{"kind":"node","path":"/x/y"}` + "\n" + `{"kind":"node","path":"/x"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b := attachTestBackend(t)
	stats, err := b.Import(path, FormatJSONL)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Nodes, "parents apply before children regardless of file order")

	paths, err := b.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/x", "/x/y"}, paths)
}

func TestDump_UnknownFormat(t *testing.T) {
	b := attachTestBackend(t)
	_, err := b.Export(filepath.Join(t.TempDir(), "x"), "xml")
	assert.ErrorIs(t, err, ErrFormatUnknown)

	path := filepath.Join(t.TempDir(), "x")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = b.Import(path, "xml")
	assert.ErrorIs(t, err, ErrFormatUnknown)
}

func TestDump_ExportDetached(t *testing.T) {
	b := NewBackend()
	_, err := b.Export(filepath.Join(t.TempDir(), "x"), FormatJSONL)
	assert.ErrorIs(t, err, types.ErrContainerDetached)
}
