package pt

import (
	"fmt"

	"github.com/tudgoi/pika/codec"
)

// RefNotFoundError means a child reference inside a node points at a
// hash absent from the repo.
type RefNotFoundError struct {
	Hash codec.Hash
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("pt: ref not found: %s", e.Hash)
}
