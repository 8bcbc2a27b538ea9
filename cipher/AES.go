/*
File Name:  AES.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Default content cipher: PBKDF2-SHA1 key derivation followed by AES-256-CBC.
Padding is applied to a 32-byte unit rather than AES's native 16-byte block;
this is intentionally preserved for fidelity and documented as non-standard.
*/

package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 12000
	keySize          = 32
	// padUnit is the padding unit used by the tool this cipher is modeled
	// on. It does not match AES's 16-byte block size.
	padUnit = 32
)

// Cipher is the pluggable content-encryption collaborator accepted by the
// upload/download driver. Implementations need not use AES; they only need
// to round-trip Encrypt/Decrypt under the same password and filename.
type Cipher interface {
	Encrypt(data []byte, password, filename []byte) ([]byte, error)
	Decrypt(data []byte, password, filename []byte) ([]byte, error)
}

// AESCipher is the default Cipher implementation.
type AESCipher struct{}

// deriveKey derives a 32-byte AES key from password, salted with
// SHA-256(filename).
func deriveKey(password, filename []byte) []byte {
	salt := sha256.Sum256(filename)
	return pbkdf2.Key(password, salt[:], pbkdf2Iterations, keySize, sha1.New)
}

// pad appends padUnit-aligned padding; the pad byte value equals the pad
// length, matching a PKCS#7-style scheme but with a 32-byte unit.
func pad(data []byte) []byte {
	padLen := padUnit - (len(data) % padUnit)
	out := append([]byte{}, data...)
	for i := 0; i < padLen; i++ {
		out = append(out, byte(padLen))
	}
	return out
}

// unpad strips padding added by pad, validating that the trailing pad length
// byte is within [1, padUnit] and that every pad byte equals it.
func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("cipher: empty ciphertext")
	}
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > padUnit || padLen > len(data) {
		return nil, errors.New("cipher: invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("cipher: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}

// Encrypt pads and AES-256-CBC encrypts data, prefixing a random IV.
func (AESCipher) Encrypt(data []byte, password, filename []byte) ([]byte, error) {
	key := deriveKey(password, filename)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := pad(data)
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	stdcipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return append(iv, ciphertext...), nil
}

// Decrypt reverses Encrypt.
func (AESCipher) Decrypt(data []byte, password, filename []byte) ([]byte, error) {
	if len(data) < aes.BlockSize {
		return nil, errors.New("cipher: ciphertext too short")
	}

	key := deriveKey(password, filename)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv, ciphertext := data[:aes.BlockSize], data[aes.BlockSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("cipher: ciphertext not block aligned")
	}

	plaintext := make([]byte, len(ciphertext))
	stdcipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpad(plaintext)
}
