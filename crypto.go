package smartglass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"errors"
	"fmt"
)

// cryptoContext holds the per-session key material derived from a console
// certificate: an ephemeral P-256 agreement expanded with SHA-512 into an
// AES-128-CBC key, an IV key, and an HMAC-SHA256 key. The client treats it
// as an opaque seal/open capability.
type cryptoContext struct {
	aesKey    []byte
	ivKey     []byte
	macKey    []byte
	publicKey []byte // our ephemeral public key, sent in the connect request
}

// newCryptoContext derives a crypto context from a console's DER-encoded
// certificate.
func newCryptoContext(certificate []byte) (*cryptoContext, error) {
	cert, err := x509.ParseCertificate(certificate)
	if err != nil {
		return nil, fmt.Errorf("parse console certificate: %w", err)
	}
	ecKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("console certificate does not carry an EC public key")
	}
	consoleKey, err := ecKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("console public key: %w", err)
	}

	ourKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	secret, err := ourKey.ECDH(consoleKey)
	if err != nil {
		return nil, fmt.Errorf("key agreement: %w", err)
	}

	ctx := newCryptoContextFromSecret(secret)
	ctx.publicKey = ourKey.PublicKey().Bytes()
	return ctx, nil
}

// newCryptoContextFromSecret expands a shared secret into the session keys.
func newCryptoContextFromSecret(secret []byte) *cryptoContext {
	expanded := sha512.Sum512(secret)
	return &cryptoContext{
		aesKey: expanded[0:16],
		ivKey:  expanded[16:32],
		macKey: expanded[32:64],
	}
}

// RandomIV returns a fresh 16-byte initialization vector.
func (c *cryptoContext) RandomIV() []byte {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return iv
}

// seal pads and encrypts plaintext with AES-128-CBC under the given IV.
func (c *cryptoContext) seal(plaintext, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.aesKey)
	if err != nil {
		return nil, err
	}
	padded := padPKCS7(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// open decrypts and unpads ciphertext sealed by the peer.
func (c *cryptoContext) open(ciphertext, iv []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not block aligned")
	}
	block, err := aes.NewCipher(c.aesKey)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return unpadPKCS7(out, aes.BlockSize)
}

// mac computes the HMAC-SHA256 authenticator for a framed datagram.
func (c *cryptoContext) mac(data []byte) []byte {
	h := hmac.New(sha256.New, c.macKey)
	h.Write(data)
	return h.Sum(nil)
}

// verify checks an authenticator in constant time.
func (c *cryptoContext) verify(data, sum []byte) bool {
	return hmac.Equal(c.mac(data), sum)
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
