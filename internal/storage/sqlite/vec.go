package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sandevgo/docchat/internal/core"
)

// serializeVector converts a vector to a little-endian float32 BLOB.
func serializeVector(vec core.Vector) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(len(vec) * 4)
	if err := binary.Write(buf, binary.LittleEndian, []float32(vec)); err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return buf.Bytes(), nil
}

func deserializeVector(blob []byte, dims int) (core.Vector, error) {
	if len(blob) != dims*4 {
		return nil, fmt.Errorf("vector blob has %d bytes, expected %d", len(blob), dims*4)
	}
	vec := make(core.Vector, dims)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, []float32(vec)); err != nil {
		return nil, fmt.Errorf("failed to deserialize vector: %w", err)
	}
	return vec, nil
}
