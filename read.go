package tile

import (
	"fmt"
	"os"
)

// ReadBlock reads the payload bytes of the block identified by the
// canonical CID string.
//
// The backing file is opened fresh per call and read at the indexed
// offset; no file handle is cached between reads. A shortfall (the file
// shrank or was rewritten since parsing) is an error, never a silent
// truncation.
func (t *Tile) ReadBlock(cidStr string) ([]byte, error) {
	rng, ok := t.index[cidStr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, cidStr)
	}

	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	buf := make([]byte, rng.length)
	if _, err := f.ReadAt(buf, int64(rng.offset)); err != nil {
		return nil, fmt.Errorf("read block %s at offset %d: %w", cidStr, rng.offset, err)
	}
	return buf, nil
}
