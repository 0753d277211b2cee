package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// Sealed value format:
//
//	[flag:1][nonce:24][secretbox(payload)]
//
// flag is 0x00 for a raw payload and 0x01 for a zstd compressed one.
const (
	flagRaw  byte = 0x00
	flagZstd byte = 0x01

	nonceSize = 24
	infoKey   = "cryptcol-secretbox"

	compressThreshold = 1024
	minSavings        = 0.10
	maxPayloadSize    = 64 << 20
)

var (
	// ErrDecrypt is returned by Open when the key is wrong or the sealed
	// value was modified.
	ErrDecrypt = errors.New("cipher: wrong key or corrupt data")
	// ErrFormat is returned by Open for values too short to be sealed.
	ErrFormat = errors.New("cipher: invalid sealed value")
)

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayloadSize))
		if zstdErr != nil {
			zstdEncoder.Close()
			zstdEncoder = nil
		}
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// deriveKey stretches a passphrase into a secretbox key with HKDF-SHA256.
func deriveKey(key Key) (*[32]byte, error) {
	var out [32]byte
	r := hkdf.New(sha256.New, []byte(key), nil, []byte(infoKey))
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return nil, err
	}
	return &out, nil
}

// Seal encrypts plaintext under key with XSalsa20-Poly1305. Payloads of at
// least 1 KiB are compressed first when compression saves 10% or more.
func Seal(plaintext []byte, key Key) ([]byte, error) {
	k, err := deriveKey(key)
	if err != nil {
		return nil, err
	}
	payload, flag := plaintext, flagRaw
	if len(plaintext) >= compressThreshold {
		enc, _, err := codecs()
		if err == nil {
			compressed := enc.EncodeAll(plaintext, nil)
			if saved := float64(len(plaintext)-len(compressed)) / float64(len(plaintext)); saved >= minSavings {
				payload, flag = compressed, flagZstd
			}
		}
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+nonceSize+len(payload)+secretbox.Overhead)
	out = append(out, flag)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, payload, &nonce, k), nil
}

// Open reverses Seal. It returns ErrDecrypt when key does not match the key
// the value was sealed with.
func Open(sealed []byte, key Key) ([]byte, error) {
	if len(sealed) < 1+nonceSize+secretbox.Overhead {
		return nil, ErrFormat
	}
	k, err := deriveKey(key)
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[1:1+nonceSize])
	payload, ok := secretbox.Open(nil, sealed[1+nonceSize:], &nonce, k)
	if !ok {
		return nil, ErrDecrypt
	}
	switch sealed[0] {
	case flagRaw:
		return payload, nil
	case flagZstd:
		_, dec, err := codecs()
		if err != nil {
			return nil, err
		}
		plaintext, err := dec.DecodeAll(payload, nil)
		if err != nil || len(plaintext) > maxPayloadSize {
			return nil, ErrFormat
		}
		return plaintext, nil
	default:
		return nil, ErrFormat
	}
}
