package tile

import (
	"fmt"
	"strings"
)

// Resolve finds the resource matching a request path and reads its
// block.
//
// Candidate keys are tried against the manifest's resource map in
// order: the path as given, the path with trailing slashes removed,
// the path with a trailing slash appended, and "/index.html" when the
// path is the root. The first match wins. An empty path is treated
// as "/".
//
// The returned Resource carries the response headers declared by the
// container; the bytes are the backing block's payload.
func (t *Tile) Resolve(path string) (Resource, []byte, error) {
	if path == "" {
		path = "/"
	}

	trimmed := path
	if strings.HasSuffix(path, "/") {
		trimmed = strings.TrimRight(path, "/")
	}
	appended := path
	if !strings.HasSuffix(path, "/") {
		appended = path + "/"
	}
	root := path
	if path == "/" {
		root = "/index.html"
	}

	var res Resource
	found := false
	for _, candidate := range [4]string{path, trimmed, appended, root} {
		if r, ok := t.manifest.Resources[candidate]; ok {
			res, found = r, true
			break
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}

	// Parsing rejects resources without src, so this only trips on an
	// internally inconsistent Tile.
	src, ok := res.Src()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingSrc, path)
	}

	data, err := t.ReadBlock(src)
	if err != nil {
		return nil, nil, err
	}
	return res, data, nil
}
