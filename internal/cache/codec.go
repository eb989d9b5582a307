package cache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"time"
)

// Codec serializes cached values.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// JSONCodec stores values as JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string                          { return "json" }
func (JSONCodec) Marshal(v any) ([]byte, error)         { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, dest any) error { return json.Unmarshal(data, dest) }

// GobCodec stores values with encoding/gob. Unlike JSON it keeps NaN.
type GobCodec struct{}

func (GobCodec) Name() string { return "gob" }

func (GobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobCodec) Unmarshal(data []byte, dest any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(dest)
}

// CodecByName returns the codec for "json" (or "") and "gob".
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "gob":
		return GobCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %q", name)
	}
}

// Envelope layout:
//
//	magic(4) | written_at unix nanos(8) | payload length(4) | payload | crc32(4)
//
// The checksum covers everything before it.
var envelopeMagic = [4]byte{'T', 'S', 'C', '1'}

const envelopeOverhead = 4 + 8 + 4 + 4

var errCorrupt = errors.New("corrupt cache entry")

func encodeEnvelope(writtenAt time.Time, payload []byte) []byte {
	buf := make([]byte, 0, envelopeOverhead+len(payload))
	buf = append(buf, envelopeMagic[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(writtenAt.UnixNano()))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return binary.BigEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf))
}

func decodeEnvelope(data []byte) (time.Time, []byte, error) {
	if len(data) < envelopeOverhead {
		return time.Time{}, nil, fmt.Errorf("%w: %d bytes", errCorrupt, len(data))
	}
	if !bytes.Equal(data[:4], envelopeMagic[:]) {
		return time.Time{}, nil, fmt.Errorf("%w: bad magic", errCorrupt)
	}
	n := int(binary.BigEndian.Uint32(data[12:16]))
	if len(data) != envelopeOverhead+n {
		return time.Time{}, nil, fmt.Errorf("%w: length %d does not match payload %d", errCorrupt, len(data), n)
	}
	body := data[:len(data)-4]
	if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(data[len(data)-4:]) {
		return time.Time{}, nil, fmt.Errorf("%w: checksum mismatch", errCorrupt)
	}
	writtenAt := time.Unix(0, int64(binary.BigEndian.Uint64(data[4:12])))
	return writtenAt, body[16:], nil
}
