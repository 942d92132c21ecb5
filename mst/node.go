// Package mst implements the Merkle Search Tree engine: each key's depth
// in the tree is a deterministic function of a hash of the key, so the
// resulting shape — and therefore the root hash — depends only on the
// current key set, never on insertion order.
//
// Ported from the reference implementation's src/mst.rs, kept to the same
// recursive, level-keyed algorithm.
package mst

import (
	"fmt"
	"math/bits"

	"github.com/tudgoi/pika/codec"
)

// LevelDivisor controls the expected branching factor (roughly
// 2^LevelDivisor per level). The spec pins this at 3 and leaves it an
// unexplained tunable; nothing in the reference project's history
// justifies a different default, so 3 it stays.
const LevelDivisor = 3

type itemKind uint8

const (
	itemPayload itemKind = iota
	itemRef
)

// Item is either a Payload(key, value) leaf entry or a Ref to a child
// node, interleaved with payloads in tree order.
type Item struct {
	kind  itemKind
	key   codec.TreeKey
	value string
	ref   codec.Hash
}

// Payload constructs a leaf item.
func Payload(key codec.TreeKey, value string) Item {
	return Item{kind: itemPayload, key: key, value: value}
}

// Ref constructs a child-reference item.
func Ref(h codec.Hash) Item {
	return Item{kind: itemRef, ref: h}
}

// IsPayload reports whether the item is a Payload.
func (it Item) IsPayload() bool { return it.kind == itemPayload }

// IsRef reports whether the item is a Ref.
func (it Item) IsRef() bool { return it.kind == itemRef }

// Key returns the item's key; only meaningful for a Payload.
func (it Item) Key() codec.TreeKey { return it.key }

// Value returns the item's value; only meaningful for a Payload.
func (it Item) Value() string { return it.value }

// RefHash returns the item's child hash; only meaningful for a Ref.
func (it Item) RefHash() codec.Hash { return it.ref }

func (it Item) String() string {
	if it.IsPayload() {
		return fmt.Sprintf("%s=%q", it.key, it.value)
	}
	return "[" + it.ref.String() + "]"
}

// Node is a list of items stored in tree order. An empty Node represents
// the empty tree and is never itself written to the repo.
type Node struct {
	items []Item
}

// New returns an empty node.
func New() *Node {
	return &Node{}
}

// Items returns the node's items in tree order. The slice must be
// treated as read-only by callers.
func (n *Node) Items() []Item {
	return n.items
}

// Level computes a key's MST level: the number of leading zero bits in
// the first 128 bits of BLAKE3(key.Bytes()), divided by LevelDivisor.
func Level(key codec.TreeKey) uint32 {
	h := codec.Sum(key.Bytes())
	return leadingZeros128(h) / LevelDivisor
}

// leadingZeros128 counts leading zero bits across the first 16 bytes of
// h, treated as a big-endian 128-bit unsigned integer.
func leadingZeros128(h codec.Hash) uint32 {
	var total uint32
	for _, b := range h[:16] {
		if b == 0 {
			total += 8
			continue
		}
		total += uint32(bits.LeadingZeros8(b))
		return total
	}
	return total
}

// estimateLevel returns the level of the node's first payload item, and
// false if the node holds no payload (the empty node, or an internal
// node holding only refs, which cannot occur by construction).
func (n *Node) estimateLevel() (uint32, bool) {
	for _, it := range n.items {
		if it.IsPayload() {
			return Level(it.key), true
		}
	}
	return 0, false
}
