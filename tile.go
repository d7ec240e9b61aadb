package tile

import (
	"errors"
	"iter"
	"maps"
	"slices"
)

// Sentinel errors.
var (
	// ErrFormat is returned when a container's framing is malformed:
	// truncated or degenerate varints, header or block lengths that
	// exceed the file, or an unparseable content identifier.
	ErrFormat = errors.New("tile: malformed container")

	// ErrManifest is returned when the manifest header decodes but does
	// not satisfy the schema: missing name, a resource without src, or
	// a src that is not a valid CID link.
	ErrManifest = errors.New("tile: invalid manifest")

	// ErrBlockNotFound is returned when a CID is absent from the index.
	ErrBlockNotFound = errors.New("tile: block not found")

	// ErrResourceNotFound is returned when no resource matches a
	// request path after the fallback chain.
	ErrResourceNotFound = errors.New("tile: no resource at path")

	// ErrMissingSrc is returned when a resolved resource has no src
	// entry. Parsing rejects such resources, so this indicates an
	// internal inconsistency rather than a bad container.
	ErrMissingSrc = errors.New("tile: resource missing src")

	// ErrNotLoaded is returned when an authority is not in the store.
	ErrNotLoaded = errors.New("tile: not loaded")
)

// Manifest is the structured metadata embedded in the container header.
//
// Name is required; everything else is optional. Unknown header fields
// (format version markers, root pointers, extensions) are ignored at
// parse time, so manifests from newer writers remain readable.
type Manifest struct {
	Name            string              `json:"name"`
	Resources       map[string]Resource `json:"resources"`
	Icons           []Icon              `json:"icons,omitempty"`
	Description     string              `json:"description,omitempty"`
	ShortName       string              `json:"short_name,omitempty"`
	ThemeColor      string              `json:"theme_color,omitempty"`
	BackgroundColor string              `json:"background_color,omitempty"`
}

// Resource maps a request path to a block plus response headers.
//
// The reserved key "src" holds the canonical CID string of the block
// implementing the resource; every other key is an HTTP header name
// passed through verbatim to responses. Parsing guarantees src is
// present and valid.
type Resource map[string]string

// Src returns the CID string of the block backing this resource.
// ok is false when the entry is absent, which a parsed container never
// produces.
func (r Resource) Src() (string, bool) {
	src, ok := r["src"]
	return src, ok
}

// ContentType returns the declared content type, or
// "application/octet-stream" when the resource declares none.
func (r Resource) ContentType() string {
	if ct, ok := r["content-type"]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Headers iterates the pass-through header pairs in sorted key order,
// skipping the reserved "src" and "content-type" keys.
func (r Resource) Headers() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range slices.Sorted(maps.Keys(r)) {
			if k == "src" || k == "content-type" {
				continue
			}
			if !yield(k, r[k]) {
				return
			}
		}
	}
}

// Icon is one entry of the manifest's icon list.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Purpose string `json:"purpose"`
}

// blockRange locates one block's payload inside the container file.
// The range excludes the block's CID prefix.
type blockRange struct {
	offset uint64
	length uint64
}

// Tile is a parsed container: the backing file path, its manifest, and
// an index from canonical CID string to payload byte range.
//
// A Tile is immutable after ParseFile returns; concurrent readers need
// no synchronization.
type Tile struct {
	path     string
	manifest Manifest
	index    map[string]blockRange
}

// Path returns the backing file path.
func (t *Tile) Path() string {
	return t.path
}

// Manifest returns the parsed manifest.
func (t *Tile) Manifest() Manifest {
	return t.manifest
}

// Len returns the number of indexed blocks. Blocks sharing a CID are
// counted once (the last occurrence wins during parsing).
func (t *Tile) Len() int {
	return len(t.index)
}

// Block returns the payload byte range recorded for a CID.
// ok is false when the CID is not in the index.
func (t *Tile) Block(cidStr string) (offset, length uint64, ok bool) {
	rng, ok := t.index[cidStr]
	return rng.offset, rng.length, ok
}

// Blocks iterates the indexed CIDs in sorted order.
func (t *Tile) Blocks() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, id := range slices.Sorted(maps.Keys(t.index)) {
			if !yield(id) {
				return
			}
		}
	}
}
