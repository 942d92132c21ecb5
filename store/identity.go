package store

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// PublicKey is a compressed secp256k1 public key: the process identity a
// future sync transport would authenticate this replica with.
type PublicKey []byte

// generateIdentity creates a fresh keypair, returning the raw private key
// bytes to persist and the compressed public key to hand back to callers.
func generateIdentity() (priv []byte, pub PublicKey, err error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, errors.Wrap(err, "store: generate identity")
	}
	priv = key.Serialize()
	pub = PublicKey(key.PubKey().SerializeCompressed())
	return priv, pub, nil
}

func publicKeyFromPrivate(raw []byte) PublicKey {
	key := secp256k1.PrivKeyFromBytes(raw)
	return PublicKey(key.PubKey().SerializeCompressed())
}
