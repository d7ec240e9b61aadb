package tile

import (
	"fmt"
	"os"

	"github.com/ipfs/go-cid"

	"github.com/tilefmt/tile/internal/varint"
)

// ParseFile parses the container at path.
//
// The whole file is read into memory for the scan, but block payloads
// are never materialized: the index records only byte ranges, and
// ReadBlock fetches payloads on demand. Any framing or manifest error
// aborts the parse; there is no partial container.
func ParseFile(path string) (*Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	headerLen, n := varint.Uvarint(data)
	if n == 0 {
		return nil, fmt.Errorf("%w: header length varint", ErrFormat)
	}
	pos := n
	if headerLen > uint64(len(data)-pos) {
		return nil, fmt.Errorf("%w: header length %d exceeds file size %d", ErrFormat, headerLen, len(data))
	}

	manifest, err := parseManifest(data[pos : pos+int(headerLen)])
	if err != nil {
		return nil, err
	}
	pos += int(headerLen)

	index := make(map[string]blockRange)
	for pos < len(data) {
		blockLen, n := varint.Uvarint(data[pos:])
		if n == 0 {
			return nil, fmt.Errorf("%w: block length varint at offset %d", ErrFormat, pos)
		}
		pos += n

		// A zero-length block is the explicit end-of-blocks marker.
		if blockLen == 0 {
			break
		}
		if blockLen > uint64(len(data)-pos) {
			return nil, fmt.Errorf("%w: block at offset %d extends beyond file", ErrFormat, pos)
		}

		cidLen, c, err := cid.CidFromBytes(data[pos : pos+int(blockLen)])
		if err != nil {
			return nil, fmt.Errorf("%w: CID at offset %d: %w", ErrFormat, pos, err)
		}

		// Later blocks with the same CID overwrite earlier entries.
		index[c.String()] = blockRange{
			offset: uint64(pos + cidLen),
			length: blockLen - uint64(cidLen),
		}
		pos += int(blockLen)
	}

	return &Tile{
		path:     path,
		manifest: manifest,
		index:    index,
	}, nil
}
