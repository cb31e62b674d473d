package pagepool

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType identifies the codec a page was written with. The value
// is stored in the slot header of compressed page files.
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionGzip   CompressionType = 1
	CompressionSnappy CompressionType = 2
	CompressionZstd   CompressionType = 3
	CompressionLZ4    CompressionType = 4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a codec name to its type. The empty string means
// CompressionNone.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "snappy":
		return CompressionSnappy, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, fmt.Errorf("unknown page codec %q", name)
	}
}

// CompressionLevel represents compression level for algorithms that support it
type CompressionLevel int

const (
	CompressionLevelFastest CompressionLevel = 1
	CompressionLevelDefault CompressionLevel = 0
	CompressionLevelBetter  CompressionLevel = 3
	CompressionLevelBest    CompressionLevel = 9
)

// Compressor compresses whole pages.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Type() CompressionType
}

// SnappyCompressor implements Snappy compression
type SnappyCompressor struct{}

func (s *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (s *SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (s *SnappyCompressor) Type() CompressionType {
	return CompressionSnappy
}

// ZstdCompressor implements Zstandard compression
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdCompressor(level CompressionLevel) (*ZstdCompressor, error) {
	zstdLevel := zstd.SpeedDefault
	switch level {
	case CompressionLevelFastest:
		zstdLevel = zstd.SpeedFastest
	case CompressionLevelBetter:
		zstdLevel = zstd.SpeedBetterCompression
	case CompressionLevelBest:
		zstdLevel = zstd.SpeedBestCompression
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, err
	}
	return &ZstdCompressor{encoder: encoder, decoder: decoder}, nil
}

func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return z.decoder.DecodeAll(data, nil)
}

func (z *ZstdCompressor) Type() CompressionType {
	return CompressionZstd
}

func (z *ZstdCompressor) Close() {
	if z.encoder != nil {
		z.encoder.Close()
	}
	if z.decoder != nil {
		z.decoder.Close()
	}
}

// GzipCompressor implements Gzip compression
type GzipCompressor struct {
	level int
}

func NewGzipCompressor(level CompressionLevel) *GzipCompressor {
	gzipLevel := gzip.DefaultCompression
	switch level {
	case CompressionLevelFastest:
		gzipLevel = gzip.BestSpeed
	case CompressionLevelBest:
		gzipLevel = gzip.BestCompression
	}
	return &GzipCompressor{level: gzipLevel}
}

func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (g *GzipCompressor) Type() CompressionType {
	return CompressionGzip
}

// LZ4Compressor implements LZ4 frame compression
type LZ4Compressor struct {
	level lz4.CompressionLevel
}

func NewLZ4Compressor(level CompressionLevel) *LZ4Compressor {
	lz4Level := lz4.Level4
	switch level {
	case CompressionLevelFastest:
		lz4Level = lz4.Fast
	case CompressionLevelBest:
		lz4Level = lz4.Level9
	}
	return &LZ4Compressor{level: lz4Level}
}

func (l *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(l.level)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *LZ4Compressor) Type() CompressionType {
	return CompressionLZ4
}

// CreateCompressor creates compressor instances. CompressionNone yields a
// nil Compressor, which makes a pool write raw pages.
func CreateCompressor(compressionType CompressionType, level CompressionLevel) (Compressor, error) {
	switch compressionType {
	case CompressionNone:
		return nil, nil
	case CompressionSnappy:
		return &SnappyCompressor{}, nil
	case CompressionZstd:
		return NewZstdCompressor(level)
	case CompressionGzip:
		return NewGzipCompressor(level), nil
	case CompressionLZ4:
		return NewLZ4Compressor(level), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %d", compressionType)
	}
}
