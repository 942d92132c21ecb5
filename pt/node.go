// Package pt implements the Prolly Tree engine: node boundaries are
// decided by a rolling hash over serialized keys, so two trees built from
// the same key set land on identical chunk boundaries (and therefore the
// same root hash) regardless of insertion order, while still allowing
// small local edits to only rewrite the chunks they touch.
//
// Ported from the reference implementation's src/pt.rs.
package pt

import (
	"fmt"

	"github.com/tudgoi/pika/codec"
)

type itemKind uint8

const (
	itemPayload itemKind = iota
	itemRef
)

// Item is either a leaf Payload(key, value), present only in leaf nodes,
// or a Ref(key, hash) naming a child node and the first key it covers,
// present only in internal nodes. A node never mixes the two kinds.
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

// Ref constructs a child-reference item. key is the first key covered by
// the child, used to route searches without loading it.
func Ref(key codec.TreeKey, h codec.Hash) Item {
	return Item{kind: itemRef, key: key, ref: h}
}

// IsPayload reports whether the item is a Payload.
func (it Item) IsPayload() bool { return it.kind == itemPayload }

// IsRef reports whether the item is a Ref.
func (it Item) IsRef() bool { return it.kind == itemRef }

// Key returns the item's navigation key: the entry's own key for a
// Payload, or the first key of the child subtree for a Ref.
func (it Item) Key() codec.TreeKey { return it.key }

// Value returns the item's value; only meaningful for a Payload.
func (it Item) Value() string { return it.value }

// RefHash returns the item's child hash; only meaningful for a Ref.
func (it Item) RefHash() codec.Hash { return it.ref }

func (it Item) String() string {
	if it.IsPayload() {
		return fmt.Sprintf("%s=%q", it.key, it.value)
	}
	return fmt.Sprintf("[%s]@%s", it.key, it.ref)
}

// Node is a chunk of items in key order: either every item is a Payload
// (a leaf chunk) or every item is a Ref (an internal chunk). An empty
// Node is the only node shared between the two kinds.
type Node struct {
	items []Item
}

// New returns an empty node.
func New() *Node {
	return &Node{}
}

// Items returns the node's items in key order. Callers must treat the
// slice as read-only.
func (n *Node) Items() []Item {
	return n.items
}

// IsLeaf reports whether n's items are Payloads. An empty node counts as
// a leaf, matching the convention used throughout upsert/find.
func (n *Node) IsLeaf() bool {
	return len(n.items) == 0 || n.items[0].IsPayload()
}
