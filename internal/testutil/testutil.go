// Package testutil builds in-memory container fixtures for tests.
//
// It is the only code in the module that encodes containers; the public
// API is read-only.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

// CIDFor returns a CIDv1 (raw codec, sha2-256) for the given payload.
func CIDFor(t *testing.T, payload []byte) cid.Cid {
	t.Helper()
	digest, err := mh.Sum(payload, mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, digest)
}

// Link wraps a CID as the Tag(42, Bytes) value used by manifest src
// fields, with the identity multibase prefix byte.
func Link(c cid.Cid) cbor.Tag {
	return cbor.Tag{
		Number:  42,
		Content: append([]byte{0x00}, c.Bytes()...),
	}
}

// Builder assembles a container image: a CBOR manifest header followed
// by content-addressed blocks.
type Builder struct {
	manifest map[string]any
	blocks   [][]byte
}

// NewBuilder creates a builder with the given manifest name and an
// empty resource map.
func NewBuilder(name string) *Builder {
	return &Builder{
		manifest: map[string]any{
			"name":      name,
			"resources": map[string]any{},
		},
	}
}

// SetField sets a raw manifest field, overwriting any previous value.
func (b *Builder) SetField(key string, v any) *Builder {
	b.manifest[key] = v
	return b
}

// AddBlock appends a payload block and returns its CID.
func (b *Builder) AddBlock(t *testing.T, payload []byte) cid.Cid {
	t.Helper()
	b.blocks = append(b.blocks, payload)
	return CIDFor(t, payload)
}

// AddResource appends a payload block and declares a manifest resource
// at path pointing at it, with the given extra header entries.
func (b *Builder) AddResource(t *testing.T, path string, payload []byte, headers map[string]string) cid.Cid {
	t.Helper()
	c := b.AddBlock(t, payload)
	entry := map[string]any{"src": Link(c)}
	for k, v := range headers {
		entry[k] = v
	}
	b.manifest["resources"].(map[string]any)[path] = entry
	return c
}

// AddRawResource declares a manifest resource at path without adding a
// block, for fixtures whose src is absent from the index or malformed.
func (b *Builder) AddRawResource(path string, entry map[string]any) *Builder {
	b.manifest["resources"].(map[string]any)[path] = entry
	return b
}

// AddIcon appends a raw icon entry to the manifest's icon list.
func (b *Builder) AddIcon(entry any) *Builder {
	icons, _ := b.manifest["icons"].([]any)
	b.manifest["icons"] = append(icons, entry)
	return b
}

// Bytes encodes the container image.
func (b *Builder) Bytes(t *testing.T) []byte {
	t.Helper()
	header, err := cbor.Marshal(b.manifest)
	require.NoError(t, err)
	return Frame(t, header, b.blocks...)
}

// WriteFile writes the container image to a temp file and returns its
// path.
func (b *Builder) WriteFile(t *testing.T) string {
	t.Helper()
	return WriteContainer(t, b.Bytes(t))
}

// Frame assembles raw container bytes from an already-encoded header
// and payload blocks. Each block is framed as
// <uvarint length><CID><payload>.
func Frame(t *testing.T, header []byte, payloads ...[]byte) []byte {
	t.Helper()
	out := binary.AppendUvarint(nil, uint64(len(header)))
	out = append(out, header...)
	for _, payload := range payloads {
		c := CIDFor(t, payload)
		cidBytes := c.Bytes()
		out = binary.AppendUvarint(out, uint64(len(cidBytes)+len(payload)))
		out = append(out, cidBytes...)
		out = append(out, payload...)
	}
	return out
}

// WriteContainer writes raw container bytes to a temp file.
func WriteContainer(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.tile")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
