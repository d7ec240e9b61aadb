package tile

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
)

// cidTag is the CBOR tag number marking a CID link (DAG-CBOR convention).
const cidTag = 42

// decMode decodes header CBOR into generic values: maps become
// map[any]any (non-text keys survive for the extractor to ignore),
// tagged values become cbor.Tag, byte strings become []byte.
var decMode cbor.DecMode

func init() {
	var err error
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("tile: CBOR decoder initialization failed: " + err.Error())
	}
}

// parseManifest decodes the container header as one CBOR document and
// extracts the manifest fields.
//
// Unknown root keys (version markers, root pointers, extensions) are
// ignored. name is mandatory. Resources are strict: a resource that is
// not a map, has a non-text key, or lacks a valid src link fails the
// whole parse. Icons are best-effort: non-map entries and icons without
// src are skipped.
func parseManifest(header []byte) (Manifest, error) {
	var root any
	if err := decMode.NewDecoder(bytes.NewReader(header)).Decode(&root); err != nil {
		return Manifest{}, fmt.Errorf("%w: decode header: %w", ErrFormat, err)
	}

	fields, ok := root.(map[any]any)
	if !ok {
		return Manifest{}, fmt.Errorf("%w: header is not a map", ErrManifest)
	}

	var m Manifest
	var hasName bool
	for k, v := range fields {
		key, ok := asText(k)
		if !ok {
			continue
		}
		switch key {
		case "name":
			m.Name, hasName = asText(v)
		case "description":
			m.Description, _ = asText(v)
		case "short_name":
			m.ShortName, _ = asText(v)
		case "theme_color":
			m.ThemeColor, _ = asText(v)
		case "background_color":
			m.BackgroundColor, _ = asText(v)
		case "resources":
			var err error
			if m.Resources, err = parseResources(v); err != nil {
				return Manifest{}, err
			}
		case "icons":
			var err error
			if m.Icons, err = parseIcons(v); err != nil {
				return Manifest{}, err
			}
		}
	}

	if !hasName {
		return Manifest{}, fmt.Errorf("%w: missing name", ErrManifest)
	}
	if m.Resources == nil {
		m.Resources = make(map[string]Resource)
	}
	return m, nil
}

// parseResources extracts the resource map. Every entry must be
// well-formed; a single bad resource fails the manifest.
func parseResources(v any) (map[string]Resource, error) {
	entries, ok := v.(map[any]any)
	if !ok {
		return nil, fmt.Errorf("%w: resources is not a map", ErrManifest)
	}
	out := make(map[string]Resource, len(entries))
	for k, rv := range entries {
		path, ok := asText(k)
		if !ok {
			return nil, fmt.Errorf("%w: resource key is not text", ErrManifest)
		}
		res, err := parseResource(path, rv)
		if err != nil {
			return nil, err
		}
		out[path] = res
	}
	return out, nil
}

// parseResource extracts one resource entry: src must be a CID link;
// other entries are kept verbatim when text-valued and dropped
// otherwise.
func parseResource(path string, v any) (Resource, error) {
	entries, ok := v.(map[any]any)
	if !ok {
		return nil, fmt.Errorf("%w: resource %q is not a map", ErrManifest, path)
	}
	res := make(Resource, len(entries))
	for k, rv := range entries {
		key, ok := asText(k)
		if !ok {
			continue
		}
		if key == "src" {
			src, err := decodeLink(rv)
			if err != nil {
				return nil, fmt.Errorf("%w: resource %q src: %w", ErrManifest, path, err)
			}
			res["src"] = src
			continue
		}
		if s, ok := asText(rv); ok {
			res[key] = s
		}
	}
	if _, ok := res["src"]; !ok {
		return nil, fmt.Errorf("%w: resource %q missing src", ErrManifest, path)
	}
	return res, nil
}

// parseIcons extracts the icon list. Entries that are not maps or lack
// a src are skipped rather than failing the parse.
func parseIcons(v any) ([]Icon, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: icons is not an array", ErrManifest)
	}
	icons := make([]Icon, 0, len(items))
	for _, item := range items {
		entries, ok := item.(map[any]any)
		if !ok {
			continue
		}
		var icon Icon
		var hasSrc bool
		for k, iv := range entries {
			switch key, _ := asText(k); key {
			case "src":
				icon.Src, hasSrc = asText(iv)
			case "sizes":
				icon.Sizes, _ = asText(iv)
			case "purpose":
				icon.Purpose, _ = asText(iv)
			}
		}
		if hasSrc {
			icons = append(icons, icon)
		}
	}
	return icons, nil
}

// decodeLink decodes a Tag(42, Bytes) CID link to its canonical string
// form. A leading 0x00 byte is the identity multibase prefix and is
// stripped before decoding.
func decodeLink(v any) (string, error) {
	tag, ok := v.(cbor.Tag)
	if !ok || tag.Number != cidTag {
		return "", fmt.Errorf("not a tag %d link", cidTag)
	}
	raw, ok := tag.Content.([]byte)
	if !ok {
		return "", fmt.Errorf("tag %d content is not bytes", cidTag)
	}
	if len(raw) > 0 && raw[0] == 0x00 {
		raw = raw[1:]
	}
	c, err := cid.Cast(raw)
	if err != nil {
		return "", fmt.Errorf("decode CID: %w", err)
	}
	return c.String(), nil
}

// asText coerces a generic CBOR value to a string. Only text strings
// coerce; everything else reports false.
func asText(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
