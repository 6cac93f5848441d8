package core

import (
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Cosine returns the cosine similarity of v and o, or 0 when either is a zero
// vector or their dimensions differ.
func (v Vector) Cosine(o Vector) float32 {
	if len(v) != len(o) || len(v) == 0 {
		return 0
	}
	var dot, nv, no float64
	for i := range v {
		dot += float64(v[i]) * float64(o[i])
		nv += float64(v[i]) * float64(v[i])
		no += float64(o[i]) * float64(o[i])
	}
	if nv == 0 || no == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(nv) * math.Sqrt(no)))
}

// ChunkID derives a stable id from the namespace, source and offset of a chunk,
// so re-ingesting a document overwrites its previous vectors.
func ChunkID(namespace string, c Chunk) string {
	if c.ID != "" {
		return c.ID
	}
	name := namespace + "\x00" + c.Metadata.Source + "\x00" + strconv.Itoa(c.Metadata.Offset)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
