package mst

import (
	"fmt"

	"github.com/tudgoi/pika/codec"
)

// RefNotFoundError means a child reference inside a node points at a
// hash absent from the repo. In a healthy store this never happens; it
// indicates repo corruption or a garbage collection pass that ran while
// a ref was still reachable.
type RefNotFoundError struct {
	Hash codec.Hash
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("mst: ref not found: %s", e.Hash)
}
