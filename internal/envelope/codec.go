// Package envelope implements the three-field encrypted wire payload used by
// the remote endpoint and the two protocol variants that decode it.
//
// An envelope carries base64 fields d, n and t. In the authenticated default
// scheme the first 16 bytes of the decoded d field are the AES key and the
// remainder is ciphertext; n is a 12-byte GCM nonce and t the 128-bit tag.
// The key travels as a prefix of the same field as the ciphertext; that is
// the wire convention, not an accident to clean up.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
)

const (
	// KeyLength is the number of key bytes prefixed to the decoded d field.
	KeyLength = 16

	gcmNonceLength = 12
	gcmTagLength   = 16
)

// Envelope is the wire representation of an encrypted payload. Instances are
// transient: constructed per response, consumed immediately, never persisted.
type Envelope struct {
	D string `json:"d"`
	N string `json:"n"`
	T string `json:"t"`
}

// Codec converts between plaintext JSON values and envelopes.
//
// Decrypt fails with common.ErrDecode on malformed base64 or short key
// material, common.ErrCrypto on cipher or authentication failure, and
// common.ErrParse when the plaintext is not valid JSON.
type Codec interface {
	Decrypt(env Envelope, v any) error
	Encrypt(v any, key []byte) (Envelope, error)
}

// decodeField base64-decodes one envelope field. The upstream feed sometimes
// escapes its base64 in transit, so anything outside the alphabet is stripped
// before decoding.
func decodeField(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '+', r == '/', r == '=':
			return r
		}
		return -1
	}, s)

	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	return raw, nil
}

// splitKeyMaterial decodes d and splits it into key and ciphertext.
func splitKeyMaterial(d string) (key, ciphertext []byte, err error) {
	raw, err := decodeField(d)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) < KeyLength {
		return nil, nil, fmt.Errorf("%w: key material too short (%d bytes)", common.ErrDecode, len(raw))
	}
	return raw[:KeyLength], raw[KeyLength:], nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// GCMCodec is the authenticated default scheme: AES-GCM with the t field as
// the authentication tag.
type GCMCodec struct{}

func (GCMCodec) Decrypt(env Envelope, v any) error {
	key, ciphertext, err := splitKeyMaterial(env.D)
	if err != nil {
		return err
	}

	nonce, err := decodeField(env.N)
	if err != nil {
		return err
	}
	if len(nonce) != gcmNonceLength {
		return fmt.Errorf("%w: bad nonce length %d", common.ErrDecode, len(nonce))
	}

	tag, err := decodeField(env.T)
	if err != nil {
		return err
	}
	if len(tag) != gcmTagLength {
		return fmt.Errorf("%w: bad tag length %d", common.ErrDecode, len(tag))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	// GCM verifies ciphertext ‖ tag as one buffer.
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	return nil
}

func (GCMCodec) Encrypt(v any, key []byte) (Envelope, error) {
	if len(key) != KeyLength {
		return Envelope{}, fmt.Errorf("%w: key must be %d bytes", common.ErrCrypto, KeyLength)
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	nonce, err := randomBytes(gcmNonceLength)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-gcmTagLength], sealed[len(sealed)-gcmTagLength:]

	material := make([]byte, 0, KeyLength+len(ciphertext))
	material = append(material, key...)
	material = append(material, ciphertext...)

	return Envelope{
		D: base64.StdEncoding.EncodeToString(material),
		N: base64.StdEncoding.EncodeToString(nonce),
		T: base64.StdEncoding.EncodeToString(tag),
	}, nil
}
