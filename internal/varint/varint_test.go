package varint

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 255, 300, 16383, 16384,
		1<<32 - 1, 1 << 32, 1<<63 - 1, 1 << 63, 1<<64 - 1,
	}
	for _, v := range values {
		encoded := binary.AppendUvarint(nil, v)
		got, n := Uvarint(encoded)
		require.Equal(t, len(encoded), n, "value %d", v)
		assert.Equal(t, v, got, "value %d", v)
	}
}

func TestUvarintTrailingBytesIgnored(t *testing.T) {
	buf := binary.AppendUvarint(nil, 300)
	buf = append(buf, 0xde, 0xad)
	v, n := Uvarint(buf)
	assert.Equal(t, uint64(300), v)
	assert.Equal(t, 2, n)
}

func TestUvarintMalformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"truncated single", []byte{0x80}},
		{"truncated multi", []byte{0xff, 0xff, 0xff}},
		{"ten continuation bytes", bytes.Repeat([]byte{0x80}, 10)},
		{"terminator past shift bound", append(bytes.Repeat([]byte{0x80}, 10), 0x01)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, n := Uvarint(tt.buf)
			assert.Zero(t, n)
			assert.Zero(t, v)
		})
	}
}
