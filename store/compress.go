// Copyright © 2025 The Gomon Project.

package store

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm that compresses a stored sample.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

var (
	compressions = [...]struct {
		name string
		ext  string
	}{
		CompressionNone: {"none", ".cbor"},
		CompressionZstd: {"zstd", ".cbor.zst"},
		CompressionLZ4:  {"lz4", ".cbor.lz4"},
	}

	// zstd encoders and decoders are safe for concurrent use.
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// String returns the name of the compression.
func (c Compression) String() string {
	if int(c) >= len(compressions) {
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
	return compressions[c].name
}

// Set is a flag.Value interface method to enable Compression as a command line flag.
func (c *Compression) Set(s string) error {
	for i, comp := range compressions {
		if comp.name == s {
			*c = Compression(i)
			return nil
		}
	}
	return fmt.Errorf("unknown compression %q, must be none, zstd or lz4", s)
}

// ext is the file name extension of samples stored with the compression.
func (c Compression) ext() string {
	return compressions[c].ext
}

// compressionOf identifies the compression of a stored file by its name,
// returning the name without extension.
func compressionOf(name string) (Compression, string, bool) {
	for i, comp := range compressions {
		if base, ok := strings.CutSuffix(name, comp.ext); ok && base != "" {
			return Compression(i), base, true
		}
	}
	return 0, "", false
}

func (c Compression) compress(data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported compression %s", c)
}

func (c Compression) decompress(data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		buf, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return buf, nil
	case CompressionLZ4:
		buf, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return buf, nil
	}
	return nil, fmt.Errorf("unsupported compression %s", c)
}
