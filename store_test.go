package tile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilefmt/tile/internal/testutil"
)

// writeNamedContainer builds a container and writes it under the given
// file name so the derived authority is predictable.
func writeNamedContainer(t *testing.T, name string, b *testutil.Builder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, b.Bytes(t), 0o644))
	return path
}

func TestStoreOpen(t *testing.T) {
	b := testutil.NewBuilder("My Site")
	b.AddResource(t, "/index.html", []byte("hello"), nil)
	path := writeNamedContainer(t, "My Site.tile", b)

	var events []OpenEvent
	store := NewStore(WithListener(func(e OpenEvent) {
		events = append(events, e)
	}))

	authority, manifest, err := store.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "my-site.tile", authority)
	assert.Equal(t, "My Site", manifest.Name)

	tl, ok := store.Get(authority)
	require.True(t, ok)
	assert.Equal(t, path, tl.Path())

	require.Len(t, events, 1)
	assert.Equal(t, authority, events[0].Authority)
	assert.Equal(t, "My Site", events[0].Manifest.Name)

	assert.Equal(t, []string{"my-site.tile"}, store.Authorities())
	assert.Equal(t, 1, store.Len())
}

func TestStoreOpenFailure(t *testing.T) {
	store := NewStore()
	_, _, err := store.Open(filepath.Join(t.TempDir(), "missing.tile"))
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestStoreAuthorityCollisionLastOpenWins(t *testing.T) {
	first := testutil.NewBuilder("first")
	first.AddResource(t, "/", []byte("first body"), nil)
	second := testutil.NewBuilder("second")
	second.AddResource(t, "/", []byte("second body"), nil)

	// Distinct files, same normalized authority.
	pathA := writeNamedContainer(t, "My Doc.tile", first)
	pathB := writeNamedContainer(t, "my_doc.tile", second)

	store := NewStore()
	authA, _, err := store.Open(pathA)
	require.NoError(t, err)
	authB, _, err := store.Open(pathB)
	require.NoError(t, err)
	require.Equal(t, authA, authB)

	tl, ok := store.Get(authA)
	require.True(t, ok)
	assert.Equal(t, "second", tl.Manifest().Name)
	assert.Equal(t, 1, store.Len())
}

func TestStoreResolve(t *testing.T) {
	b := testutil.NewBuilder("site")
	b.AddResource(t, "/a", []byte("payload"), map[string]string{"content-type": "text/plain"})
	path := writeNamedContainer(t, "site.tile", b)

	store := NewStore()
	authority, _, err := store.Open(path)
	require.NoError(t, err)

	res, body, err := store.Resolve(authority, "/a")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
	assert.Equal(t, "text/plain", res.ContentType())

	_, _, err = store.Resolve("nope", "/a")
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, _, err = store.Resolve(authority, "/missing")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestStoreConcurrentResolve(t *testing.T) {
	store := NewStore()

	var authorities []string
	for _, name := range []string{"alpha.tile", "beta.tile"} {
		b := testutil.NewBuilder(name)
		b.AddResource(t, "/", []byte("body of "+name), nil)
		authority, _, err := store.Open(writeNamedContainer(t, name, b))
		require.NoError(t, err)
		authorities = append(authorities, authority)
	}

	// Resolutions against different authorities share only the brief
	// store-lock window; block reads run unlocked and may interleave
	// with further opens.
	var wg sync.WaitGroup
	for range 8 {
		for _, authority := range authorities {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, body, err := store.Resolve(authority, "/")
				assert.NoError(t, err)
				assert.Equal(t, "body of "+authority, string(body))
			}()
		}
	}

	extra := testutil.NewBuilder("gamma")
	extra.AddResource(t, "/", []byte("body of gamma.tile"), nil)
	_, _, err := store.Open(writeNamedContainer(t, "gamma.tile", extra))
	require.NoError(t, err)

	wg.Wait()
	assert.Equal(t, 3, store.Len())
}

func TestStoreConcurrentOpenSamePath(t *testing.T) {
	b := testutil.NewBuilder("shared")
	b.AddResource(t, "/", []byte("x"), nil)
	path := writeNamedContainer(t, "shared.tile", b)

	store := NewStore()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			authority, _, err := store.Open(path)
			assert.NoError(t, err)
			assert.Equal(t, "shared.tile", authority)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, store.Len())
}
