package codec

import "bytes"

// TreeKey is the (entity, attribute) pair both tree engines index by. Both
// engines are written generically over "a key with canonical bytes" in
// spirit, but pika's façade hardcodes (string, string) -> string (spec
// design note), so the engines are monomorphized to TreeKey directly
// rather than carrying unused type parameters.
type TreeKey struct {
	Entity    string
	Attribute string
}

// Bytes returns the canonical, length-prefixed serialization of the key.
// Byte-lexicographic comparison of this encoding defines tree order. It is
// recomputed on every call, including each Compare; nothing caches it.
func (k TreeKey) Bytes() []byte {
	e := NewEncoder()
	e.PutString(k.Entity)
	e.PutString(k.Attribute)
	return e.Bytes()
}

// Compare orders two keys by their canonical byte encoding.
func (k TreeKey) Compare(other TreeKey) int {
	return bytes.Compare(k.Bytes(), other.Bytes())
}

// Equal reports whether two keys serialize to the same bytes.
func (k TreeKey) Equal(other TreeKey) bool {
	return k.Entity == other.Entity && k.Attribute == other.Attribute
}
