package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
)

// CBCCodec is the legacy non-authenticated scheme kept for older deployments:
// the decoded d field is a 16-byte key prefix followed by AES-CBC ciphertext
// (PKCS7 padded), n is the IV, and t carries a server timestamp instead of a
// tag. The timestamp is ignored on decrypt.
//
// Prefer GCMCodec; this variant offers no integrity protection.
type CBCCodec struct{}

func (CBCCodec) Decrypt(env Envelope, v any) error {
	key, ciphertext, err := splitKeyMaterial(env.D)
	if err != nil {
		return err
	}

	iv, err := decodeField(env.N)
	if err != nil {
		return err
	}
	if len(iv) != aes.BlockSize {
		return fmt.Errorf("%w: bad IV length %d", common.ErrDecode, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return fmt.Errorf("%w: ciphertext length %d not a block multiple", common.ErrDecode, len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	return nil
}

func (CBCCodec) Encrypt(v any, key []byte) (Envelope, error) {
	if len(key) != KeyLength {
		return Envelope{}, fmt.Errorf("%w: key must be %d bytes", common.ErrCrypto, KeyLength)
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	plaintext = pkcs7Pad(plaintext)

	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	material := make([]byte, 0, KeyLength+len(ciphertext))
	material = append(material, key...)
	material = append(material, ciphertext...)

	stamp := time.Now().UTC().Format(time.RFC3339)

	return Envelope{
		D: base64.StdEncoding.EncodeToString(material),
		N: base64.StdEncoding.EncodeToString(iv),
		T: base64.StdEncoding.EncodeToString([]byte(stamp)),
	}, nil
}

func pkcs7Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("bad padding byte %d", n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return b[:len(b)-n], nil
}
