package mst

import (
	"github.com/pkg/errors"
	"github.com/tudgoi/pika/codec"
)

const (
	tagPayload byte = 0
	tagRef     byte = 1
)

// Encode serializes a node into the canonical form its hash is computed
// over. Two nodes with the same items in the same order always produce
// identical bytes.
func Encode(n *Node) []byte {
	e := codec.NewEncoder()
	e.PutUvarint(uint64(len(n.items)))
	for _, it := range n.items {
		switch it.kind {
		case itemPayload:
			e.PutByte(tagPayload)
			e.PutString(it.key.Entity)
			e.PutString(it.key.Attribute)
			e.PutString(it.value)
		case itemRef:
			e.PutByte(tagRef)
			e.PutHash(it.ref)
		}
	}
	return e.Bytes()
}

// Decode parses a node from bytes previously produced by Encode.
func Decode(b []byte) (*Node, error) {
	d := codec.NewDecoder(b)
	count, err := d.Uvarint()
	if err != nil {
		return nil, errors.Wrap(err, "mst: decode item count")
	}

	items := make([]Item, 0, count)
	for i := uint64(0); i < count; i++ {
		tag, err := d.Byte()
		if err != nil {
			return nil, errors.Wrap(err, "mst: decode item tag")
		}
		switch tag {
		case tagPayload:
			entity, err := d.String()
			if err != nil {
				return nil, errors.Wrap(err, "mst: decode payload entity")
			}
			attribute, err := d.String()
			if err != nil {
				return nil, errors.Wrap(err, "mst: decode payload attribute")
			}
			value, err := d.String()
			if err != nil {
				return nil, errors.Wrap(err, "mst: decode payload value")
			}
			items = append(items, Payload(codec.TreeKey{Entity: entity, Attribute: attribute}, value))
		case tagRef:
			h, err := d.Hash()
			if err != nil {
				return nil, errors.Wrap(err, "mst: decode ref hash")
			}
			items = append(items, Ref(h))
		default:
			return nil, codec.ErrMalformed
		}
	}
	if !d.Done() {
		return nil, codec.ErrMalformed
	}
	return &Node{items: items}, nil
}
