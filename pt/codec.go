package pt

import (
	"github.com/pkg/errors"
	"github.com/tudgoi/pika/codec"
)

const (
	tagPayload byte = 0
	tagRef     byte = 1
)

// Encode serializes a node into the canonical form its hash is computed
// over.
func Encode(n *Node) []byte {
	e := codec.NewEncoder()
	e.PutUvarint(uint64(len(n.items)))
	for _, it := range n.items {
		e.PutString(it.key.Entity)
		e.PutString(it.key.Attribute)
		switch it.kind {
		case itemPayload:
			e.PutByte(tagPayload)
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
		return nil, errors.Wrap(err, "pt: decode item count")
	}

	items := make([]Item, 0, count)
	for i := uint64(0); i < count; i++ {
		entity, err := d.String()
		if err != nil {
			return nil, errors.Wrap(err, "pt: decode item entity")
		}
		attribute, err := d.String()
		if err != nil {
			return nil, errors.Wrap(err, "pt: decode item attribute")
		}
		key := codec.TreeKey{Entity: entity, Attribute: attribute}

		tag, err := d.Byte()
		if err != nil {
			return nil, errors.Wrap(err, "pt: decode item tag")
		}
		switch tag {
		case tagPayload:
			value, err := d.String()
			if err != nil {
				return nil, errors.Wrap(err, "pt: decode payload value")
			}
			items = append(items, Payload(key, value))
		case tagRef:
			h, err := d.Hash()
			if err != nil {
				return nil, errors.Wrap(err, "pt: decode ref hash")
			}
			items = append(items, Ref(key, h))
		default:
			return nil, codec.ErrMalformed
		}
	}
	if !d.Done() {
		return nil, codec.ErrMalformed
	}
	return &Node{items: items}, nil
}
