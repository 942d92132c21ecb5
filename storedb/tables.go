package storedb

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/tudgoi/pika/codec"
)

// eavKey encodes an (entity, attribute) pair into a single bucket key.
// Both components are length-prefixed so no concatenation is ambiguous.
func eavKey(entity, attribute string) []byte {
	e := codec.NewEncoder()
	e.PutString(entity)
	e.PutString(attribute)
	return e.Bytes()
}

// EAVTable maps (entity, attribute) -> value.
type EAVTable struct {
	b *bolt.Bucket
}

// Get returns the current value for (entity, attribute), if any.
func (t *EAVTable) Get(entity, attribute string) (string, bool, error) {
	v := t.b.Get(eavKey(entity, attribute))
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

// Insert sets (entity, attribute) to value, overwriting any prior value.
func (t *EAVTable) Insert(entity, attribute, value string) error {
	return errors.Wrap(t.b.Put(eavKey(entity, attribute), []byte(value)), "storedb: eav insert")
}

// Iter calls fn for every (entity, attribute, value) triple in key order.
// Iteration stops at the first error fn returns.
func (t *EAVTable) Iter(fn func(entity, attribute, value string) error) error {
	return t.b.ForEach(func(k, v []byte) error {
		d := codec.NewDecoder(k)
		entity, err := d.String()
		if err != nil {
			return errors.Wrap(err, "storedb: decode eav key")
		}
		attribute, err := d.String()
		if err != nil {
			return errors.Wrap(err, "storedb: decode eav key")
		}
		return fn(entity, attribute, string(v))
	})
}

// RepoTable maps a node hash to its encoded blob.
type RepoTable struct {
	b *bolt.Bucket
}

// Get returns the blob stored under hash, if present.
func (t *RepoTable) Get(h codec.Hash) ([]byte, bool, error) {
	v := t.b.Get(h[:])
	if v == nil {
		return nil, false, nil
	}
	// bbolt's Get result is only valid for the life of the transaction;
	// copy it out so callers can hold onto it afterwards.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Insert stores blob under hash if it is not already present. Per the
// repo's content-addressability invariant, an existing blob under the
// same hash is never overwritten.
func (t *RepoTable) Insert(h codec.Hash, blob []byte) error {
	if existing := t.b.Get(h[:]); existing != nil {
		return nil
	}
	return errors.Wrap(t.b.Put(h[:], blob), "storedb: repo insert")
}

// Iter calls fn for every (hash, blob) pair in hash order.
func (t *RepoTable) Iter(fn func(h codec.Hash, blob []byte) error) error {
	return t.b.ForEach(func(k, v []byte) error {
		var h codec.Hash
		copy(h[:], k)
		return fn(h, v)
	})
}

// RefsTable maps a ref name to the hash it currently points at.
type RefsTable struct {
	b *bolt.Bucket
}

// Get returns the hash named by ref, if set.
func (t *RefsTable) Get(ref string) (codec.Hash, bool, error) {
	v := t.b.Get([]byte(ref))
	if v == nil {
		return codec.Hash{}, false, nil
	}
	var h codec.Hash
	copy(h[:], v)
	return h, true, nil
}

// Insert points ref at hash, replacing whatever it pointed at before.
func (t *RefsTable) Insert(ref string, h codec.Hash) error {
	return errors.Wrap(t.b.Put([]byte(ref), h[:]), "storedb: refs insert")
}

// OptionsTable is a small byte-keyed table for engine selection and
// process identity.
type OptionsTable struct {
	b *bolt.Bucket
}

// Get returns the raw option value stored under key, if set.
func (t *OptionsTable) Get(key byte) ([]byte, bool, error) {
	v := t.b.Get([]byte{key})
	if v == nil {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Insert sets the option value under key.
func (t *OptionsTable) Insert(key byte, value []byte) error {
	return errors.Wrap(t.b.Put([]byte{key}, value), "storedb: options insert")
}
