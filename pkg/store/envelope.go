package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/cache"
)

// Cache files are framed with a fixed header so a format or codec change
// never silently misreads old files: a 4-byte magic (which doubles as the
// format version), one flags byte, a length-prefixed codec name, then the
// snapshot payload. Bit 0 of the flags marks a zstd-compressed payload.
const (
	envelopeMagic = "NFC1"
	flagZstd      = 1 << 0
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	// With nil streams the encoder/decoder pair only serves the
	// concurrency-safe EncodeAll/DecodeAll calls.
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
}

// encodeEnvelope frames payload with the format header, compressing it
// when compress is set.
func encodeEnvelope(codecName string, payload []byte, compress bool) ([]byte, error) {
	if len(codecName) == 0 || len(codecName) > 255 {
		return nil, fmt.Errorf("invalid codec name length: %d", len(codecName))
	}

	var flags byte
	if compress {
		flags |= flagZstd
		payload = zstdEncoder.EncodeAll(payload, nil)
	}

	buf := make([]byte, 0, len(envelopeMagic)+2+len(codecName)+len(payload))
	buf = append(buf, envelopeMagic...)
	buf = append(buf, flags, byte(len(codecName)))
	buf = append(buf, codecName...)
	buf = append(buf, payload...)
	return buf, nil
}

// decodeEnvelope validates the header and returns the codec name and the
// decompressed payload. All failures wrap cache.ErrInvalidEntry.
func decodeEnvelope(data []byte) (string, []byte, error) {
	header := len(envelopeMagic) + 2
	if len(data) < header {
		return "", nil, fmt.Errorf("%w: truncated header", cache.ErrInvalidEntry)
	}
	if string(data[:len(envelopeMagic)]) != envelopeMagic {
		return "", nil, fmt.Errorf("%w: bad magic", cache.ErrInvalidEntry)
	}

	flags := data[len(envelopeMagic)]
	if flags&^byte(flagZstd) != 0 {
		return "", nil, fmt.Errorf("%w: unknown flags %#x", cache.ErrInvalidEntry, flags)
	}

	nameLen := int(data[len(envelopeMagic)+1])
	if len(data) < header+nameLen {
		return "", nil, fmt.Errorf("%w: truncated codec name", cache.ErrInvalidEntry)
	}
	codecName := string(data[header : header+nameLen])
	payload := data[header+nameLen:]

	if flags&flagZstd != 0 {
		decoded, err := zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return "", nil, fmt.Errorf("%w: decompress: %v", cache.ErrInvalidEntry, err)
		}
		payload = decoded
	}
	return codecName, payload, nil
}
