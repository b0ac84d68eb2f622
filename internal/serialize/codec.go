// Package serialize provides the compact binary encodings used on the wire:
// zstd-compressed MessagePack for Flight tickets and zstd-compressed Arrow
// IPC for catalog listings.
package serialize

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec handles ZStandard compression of MessagePack payloads.
// Create once and reuse to eliminate allocations.
// Safe for concurrent use from multiple goroutines.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a private codec at SpeedDefault (level 3).
// Close it when done; the package-level functions use their own codec.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Codec{
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// defaultCodec backs the package-level functions. It lives for the whole
// process and is never closed.
var defaultCodec = sync.OnceValues(NewCodec)

// Marshal encodes v with the shared codec.
func Marshal(v any) ([]byte, error) {
	c, err := defaultCodec()
	if err != nil {
		return nil, err
	}
	return c.Marshal(v)
}

// Unmarshal decodes data into v with the shared codec.
func Unmarshal(data []byte, v any) error {
	c, err := defaultCodec()
	if err != nil {
		return err
	}
	return c.Unmarshal(data, v)
}

// Compress compresses data with the shared codec.
func Compress(data []byte) ([]byte, error) {
	c, err := defaultCodec()
	if err != nil {
		return nil, err
	}
	return c.Compress(data), nil
}

// Decompress decompresses data with the shared codec.
func Decompress(data []byte) ([]byte, error) {
	c, err := defaultCodec()
	if err != nil {
		return nil, err
	}
	return c.Decompress(data)
}

// Marshal encodes v as MessagePack and compresses the result.
// Struct fields use their msgpack tags.
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	return c.Compress(data), nil
}

// Unmarshal decompresses data and decodes the MessagePack payload into v.
// The v parameter should be a pointer to the target structure.
func (c *Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty payload")
	}
	raw, err := c.Decompress(data)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return nil
}

// Compress compresses data using ZStandard.
func (c *Codec) Compress(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}

	// Pre-allocate destination buffer with estimated size
	dst := make([]byte, 0, len(data)/2)

	// EncodeAll is goroutine-safe
	return c.encoder.EncodeAll(data, dst)
}

// Decompress decompresses ZStandard data.
func (c *Codec) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return []byte{}, nil
	}

	// DecodeAll is goroutine-safe
	decompressed, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return decompressed, nil
}

// Close releases the encoder and decoder of a codec from NewCodec.
// The codec must not be used afterwards.
func (c *Codec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}
