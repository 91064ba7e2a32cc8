package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Snapshot is a full copy of memory-bank state, decoupled from the bank
// type itself so persistence has no dependency on the training packages.
type Snapshot struct {
	Rows     int
	Dim      int
	Classes  int
	Momentum float32
	Mode     uint8

	// Features is the flattened rows*Dim feature matrix.
	Features []float32
	// Outputs is the flattened rows*Classes pseudo-probability matrix.
	Outputs []float32
	// Touched is the set of row indices updated so far.
	Touched *roaring.Bitmap
}

const (
	snapshotMagic   uint32 = 0x4F474441 // "ADGO"
	snapshotVersion uint8  = 1

	snapshotHeaderSize = 24
)

var (
	// ErrBadSnapshot is returned when a blob is not a valid snapshot.
	ErrBadSnapshot = errors.New("malformed snapshot")

	// ErrSnapshotVersion is returned for snapshots written by an
	// incompatible format version.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

// Encode serializes a snapshot with the given payload compression.
//
// Layout: a fixed little-endian header (magic, version, compression, mode,
// geometry, momentum) followed by one compressed block holding the feature
// matrix, the output matrix, and the serialized touched bitmap.
func Encode(snap Snapshot, compression Compression) ([]byte, error) {
	if snap.Rows <= 0 || snap.Dim <= 0 || snap.Classes <= 0 {
		return nil, fmt.Errorf("%w: non-positive geometry", ErrBadSnapshot)
	}
	if len(snap.Features) != snap.Rows*snap.Dim {
		return nil, fmt.Errorf("%w: feature payload size", ErrBadSnapshot)
	}
	if len(snap.Outputs) != snap.Rows*snap.Classes {
		return nil, fmt.Errorf("%w: output payload size", ErrBadSnapshot)
	}

	var bitmap []byte
	if snap.Touched != nil {
		var err error
		bitmap, err = snap.Touched.ToBytes()
		if err != nil {
			return nil, fmt.Errorf("serialize touched set: %w", err)
		}
	}

	payload := make([]byte, 0, 4*(len(snap.Features)+len(snap.Outputs))+4+len(bitmap))
	payload = appendFloats(payload, snap.Features)
	payload = appendFloats(payload, snap.Outputs)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(bitmap)))
	payload = append(payload, bitmap...)

	block, err := compressBlock(payload, compression)
	if err != nil {
		return nil, err
	}

	out := make([]byte, snapshotHeaderSize, snapshotHeaderSize+len(block))
	binary.LittleEndian.PutUint32(out[0:], snapshotMagic)
	out[4] = snapshotVersion
	out[5] = uint8(compression)
	out[6] = snap.Mode
	out[7] = 0
	binary.LittleEndian.PutUint32(out[8:], uint32(snap.Rows))
	binary.LittleEndian.PutUint32(out[12:], uint32(snap.Dim))
	binary.LittleEndian.PutUint32(out[16:], uint32(snap.Classes))
	binary.LittleEndian.PutUint32(out[20:], math.Float32bits(snap.Momentum))

	return append(out, block...), nil
}

// Decode parses a snapshot blob written by Encode.
func Decode(data []byte) (Snapshot, error) {
	if len(data) < snapshotHeaderSize {
		return Snapshot{}, fmt.Errorf("%w: short header", ErrBadSnapshot)
	}
	if binary.LittleEndian.Uint32(data[0:]) != snapshotMagic {
		return Snapshot{}, fmt.Errorf("%w: bad magic", ErrBadSnapshot)
	}
	if data[4] != snapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrSnapshotVersion, data[4])
	}

	compression := Compression(data[5])
	snap := Snapshot{
		Mode:     data[6],
		Rows:     int(binary.LittleEndian.Uint32(data[8:])),
		Dim:      int(binary.LittleEndian.Uint32(data[12:])),
		Classes:  int(binary.LittleEndian.Uint32(data[16:])),
		Momentum: math.Float32frombits(binary.LittleEndian.Uint32(data[20:])),
	}
	if snap.Rows <= 0 || snap.Dim <= 0 || snap.Classes <= 0 {
		return Snapshot{}, fmt.Errorf("%w: non-positive geometry", ErrBadSnapshot)
	}

	payload, err := decompressBlock(data[snapshotHeaderSize:], compression)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}

	nFeat := snap.Rows * snap.Dim
	nOut := snap.Rows * snap.Classes
	want := 4*(nFeat+nOut) + 4
	if len(payload) < want {
		return Snapshot{}, fmt.Errorf("%w: short payload", ErrBadSnapshot)
	}

	snap.Features = readFloats(payload[:4*nFeat], nFeat)
	payload = payload[4*nFeat:]
	snap.Outputs = readFloats(payload[:4*nOut], nOut)
	payload = payload[4*nOut:]

	bitmapLen := binary.LittleEndian.Uint32(payload)
	payload = payload[4:]
	if uint32(len(payload)) < bitmapLen {
		return Snapshot{}, fmt.Errorf("%w: short touched set", ErrBadSnapshot)
	}

	snap.Touched = roaring.New()
	if bitmapLen > 0 {
		if err := snap.Touched.UnmarshalBinary(payload[:bitmapLen]); err != nil {
			return Snapshot{}, fmt.Errorf("%w: touched set: %w", ErrBadSnapshot, err)
		}
	}

	return snap, nil
}

func appendFloats(dst []byte, src []float32) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func readFloats(src []byte, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
	return out
}
