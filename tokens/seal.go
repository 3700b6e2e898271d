package tokens

import (
	"crypto/rand"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealKeyFile = "seal.key"
	nonceLength = 24
	keyLength   = 32
)

// Sealer encrypts the durable refresh-token record with a machine-local
// random key. Secrecy still rests on the 0600 file permissions; sealing
// keeps the raw token out of plain-text config backups.
type Sealer struct {
	key [keyLength]byte
}

// NewSealer loads the key at keyPath, generating one on first use.
func NewSealer(keyPath string) (*Sealer, error) {
	s := &Sealer{}

	data, err := os.ReadFile(keyPath)
	if err == nil && len(data) == keyLength {
		copy(s.key[:], data)
		return s, nil
	}

	if _, err := rand.Read(s.key[:]); err != nil {
		return nil, errors.Wrap(err, "[NewSealer] rand.Read")
	}
	if err := os.WriteFile(keyPath, s.key[:], 0o600); err != nil {
		return nil, errors.Wrap(err, "[NewSealer] WriteFile")
	}
	return s, nil
}

// Seal encrypts plain, prepending the random nonce.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "[Sealer.Seal] rand.Read")
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

// Open decrypts a sealed record.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceLength {
		return nil, errors.New("[Sealer.Open] sealed record too short")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	plain, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("[Sealer.Open] record failed to authenticate")
	}
	return plain, nil
}
