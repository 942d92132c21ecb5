package pt

// WindowSize is the number of trailing key-bytes the rolling hash keeps
// in its cyclic buffer.
const WindowSize = 32

// DefaultChunkModulus is small on purpose: it forces frequent chunk
// boundaries so small stores still exercise the internal-node path.
const DefaultChunkModulus = 1 << 6

// ProductionChunkModulus targets chunks of roughly 4096 items: the
// boundary test runs once per item, after that item's key bytes.
const ProductionChunkModulus = 1 << 12

// RollingHash is a simple cyclic-buffer rolling hash (a Buzhash relative,
// without its substitution table): each byte rotates the running sum and
// folds in the incoming byte while subtracting the one falling out of the
// window. It is never reset between chunks — a Prolly Tree's boundaries
// are a property of the whole byte stream, not of each chunk in
// isolation.
type RollingHash struct {
	window  [WindowSize]byte
	pos     int
	sum     uint32
	modulus uint32
}

// NewRollingHash returns a hash that reports a boundary every time its
// running sum is divisible by modulus.
func NewRollingHash(modulus uint32) *RollingHash {
	return &RollingHash{modulus: modulus}
}

// Update folds b into the window.
func (h *RollingHash) Update(b byte) {
	old := h.window[h.pos]
	h.window[h.pos] = b
	h.pos = (h.pos + 1) % WindowSize
	h.sum = (h.sum<<1 | h.sum>>31) - uint32(old) + uint32(b)
}

// IsBoundary reports whether the current position is a chunk boundary.
func (h *RollingHash) IsBoundary() bool {
	return h.sum%h.modulus == 0
}
