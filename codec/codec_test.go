package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tudgoi/pika/codec"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	e := codec.NewEncoder()
	e.PutByte(7)
	e.PutUvarint(1 << 40)
	e.PutBlob([]byte("hello"))
	e.PutString("world")
	h := codec.Sum([]byte("seed"))
	e.PutHash(h)

	d := codec.NewDecoder(e.Bytes())

	b, err := d.Byte()
	assert.NoError(err)
	assert.Equal(byte(7), b)

	v, err := d.Uvarint()
	assert.NoError(err)
	assert.Equal(uint64(1<<40), v)

	blob, err := d.Blob()
	assert.NoError(err)
	assert.Equal([]byte("hello"), blob)

	s, err := d.String()
	assert.NoError(err)
	assert.Equal("world", s)

	gotHash, err := d.Hash()
	assert.NoError(err)
	assert.Equal(h, gotHash)

	assert.True(d.Done())
}

func TestDecodeTruncatedIsMalformed(t *testing.T) {
	e := codec.NewEncoder()
	e.PutString("this is a string")
	truncated := e.Bytes()[:2]

	d := codec.NewDecoder(truncated)
	_, err := d.String()
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestTreeKeyOrderingAndEquality(t *testing.T) {
	assert := assert.New(t)

	a := codec.TreeKey{Entity: "alice", Attribute: "name"}
	b := codec.TreeKey{Entity: "alice", Attribute: "nickname"}
	c := codec.TreeKey{Entity: "alice", Attribute: "name"}

	assert.True(a.Compare(b) < 0)
	assert.True(b.Compare(a) > 0)
	assert.Equal(0, a.Compare(c))
	assert.True(a.Equal(c))
	assert.False(a.Equal(b))

	// length-prefixing must prevent "al"+"icebob" colliding with "alice"+"bob"
	x := codec.TreeKey{Entity: "al", Attribute: "icebob"}
	y := codec.TreeKey{Entity: "alice", Attribute: "bob"}
	assert.NotEqual(x.Bytes(), y.Bytes())
}

func TestHashZero(t *testing.T) {
	var h codec.Hash
	assert.True(t, h.IsZero())
	assert.False(t, codec.Sum([]byte("x")).IsZero())
}
