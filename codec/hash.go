// Package codec implements the canonical, length-prefixed binary encoding
// shared by both tree engines, and the BLAKE3 hashing built on top of it.
//
// Two nodes with identical logical contents in the same order must encode
// to identical bytes; this is the cross-implementation contract the whole
// store's content addressability rests on.
package codec

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Hash is the 32-byte BLAKE3 digest identifying a node or a blob.
type Hash [32]byte

// Zero is the sentinel empty hash; it never identifies a stored node.
var Zero Hash

// IsZero reports whether h is the sentinel empty hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// String renders h as lowercase hex, for logs and the CLI tree dump.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Sum computes the node hash of an encoded blob.
func Sum(encoded []byte) Hash {
	return Hash(blake3.Sum256(encoded))
}
