// Package ibw reads Igor Binary Wave (.ibw) files produced by the
// Asylum Research MFP-3D. Only version 5 waves are supported, which is
// the only version the instrument writes.
package ibw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"briclab/afm/pkg/scan"

	"gonum.org/v1/gonum/mat"
)

// ErrComplexNotSupported is returned for complex-valued waves.
var ErrComplexNotSupported = errors.New("complex waves are not supported")

// ErrTypeNotSupported is returned for wave data types other than the
// numeric types the MFP-3D writes.
var ErrTypeNotSupported = errors.New("wave data type not supported")

// Load reads an MFP-3D image from an .ibw file.
func Load(path string) (*scan.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %s", path, err)
	}
	defer f.Close()

	img, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %s", path, err)
	}

	return img, nil
}

// Read parses a version 5 Igor Binary Wave from r and returns it as an
// image. The wave must be three-dimensional, with channels stored as
// layers along the third dimension, the way the MFP-3D saves images.
func Read(r io.Reader) (*scan.Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wave: %s", err)
	}
	if len(buf) < headerSize {
		return nil, fmt.Errorf("truncated wave: %d bytes, header alone is %d", len(buf), headerSize)
	}

	bo, err := byteOrder(buf)
	if err != nil {
		return nil, err
	}

	if err := verifyChecksum(buf, bo); err != nil {
		return nil, err
	}

	var bh binHeader5
	if err := binary.Read(bytes.NewReader(buf[:binHeaderSize]), bo, &bh); err != nil {
		return nil, fmt.Errorf("parsing bin header: %s", err)
	}

	if err := validateSizes(&bh); err != nil {
		return nil, err
	}

	var wh waveHeader5
	if err := binary.Read(bytes.NewReader(buf[binHeaderSize:headerSize]), bo, &wh); err != nil {
		return nil, fmt.Errorf("parsing wave header: %s", err)
	}

	nx, ny, nchan := int(wh.NDim[0]), int(wh.NDim[1]), int(wh.NDim[2])
	if nx < 1 || ny < 1 || nchan < 1 || wh.NDim[3] != 0 {
		return nil, fmt.Errorf("wave dimensions %v: expected a 3-dimensional image wave", wh.NDim)
	}
	// guard the product before comparing, a corrupt header must not overflow
	if nx > math.MaxInt32/ny || nx*ny > math.MaxInt32/nchan {
		return nil, fmt.Errorf("wave dimensions %v too large", wh.NDim)
	}
	if int(wh.Npnts) != nx*ny*nchan {
		return nil, fmt.Errorf("wave has %d points but dimensions %v require %d", wh.Npnts, wh.NDim, nx*ny*nchan)
	}

	size, err := itemSize(wh.Type)
	if err != nil {
		return nil, err
	}

	dataEnd := headerSize + int(wh.Npnts)*size
	if len(buf) < dataEnd {
		return nil, fmt.Errorf("truncated wave data: have %d bytes, need %d", len(buf), dataEnd)
	}

	flat, err := decodeData(buf[headerSize:dataEnd], wh.Type, bo)
	if err != nil {
		return nil, fmt.Errorf("decoding wave data: %s", err)
	}

	labels, err := channelLabels(buf[dataEnd:], &bh)
	if err != nil {
		return nil, fmt.Errorf("extracting labels: %s", err)
	}
	if len(labels) != nchan {
		return nil, fmt.Errorf("extracting labels: %d labels for %d channels", len(labels), nchan)
	}

	x := index(wh.SfB[0], wh.SfA[0], nx)
	y := index(wh.SfB[1], wh.SfA[1], ny)

	// wave data is stored first-dimension-fastest
	channels := make([]*mat.Dense, nchan)
	for c := 0; c < nchan; c++ {
		d := mat.NewDense(nx, ny, nil)
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				d.Set(i, j, flat[i+j*nx+c*nx*ny])
			}
		}
		channels[c] = d
	}

	img, err := scan.New(x, y, channels, labels)
	if err != nil {
		return nil, fmt.Errorf("building image: %s", err)
	}

	return img, nil
}

// byteOrder detects the byte order from the version field. Version 5 is
// the only supported version.
func byteOrder(buf []byte) (binary.ByteOrder, error) {
	le := int16(binary.LittleEndian.Uint16(buf[:2]))
	if le == 5 {
		return binary.LittleEndian, nil
	}

	be := int16(binary.BigEndian.Uint16(buf[:2]))
	if be == 5 {
		return binary.BigEndian, nil
	}

	if le >= 1 && le <= 5 {
		return nil, fmt.Errorf("unsupported wave version %d", le)
	}
	if be >= 1 && be <= 5 {
		return nil, fmt.Errorf("unsupported wave version %d", be)
	}
	return nil, fmt.Errorf("not an Igor binary wave")
}

// verifyChecksum checks that the header bytes sum to zero as 16-bit words.
func verifyChecksum(buf []byte, bo binary.ByteOrder) error {
	var sum int16
	for i := 0; i < headerSize; i += 2 {
		sum += int16(bo.Uint16(buf[i : i+2]))
	}

	if sum != 0 {
		return fmt.Errorf("header checksum mismatch: sum = %d", sum)
	}

	return nil
}

func decodeData(buf []byte, waveType int16, bo binary.ByteOrder) ([]float64, error) {
	size, err := itemSize(waveType)
	if err != nil {
		return nil, err
	}

	n := len(buf) / size
	out := make([]float64, n)
	unsigned := waveType&typeUnsigned != 0

	switch waveType &^ typeUnsigned {
	case typeFloat32:
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(bo.Uint32(buf[i*4:])))
		}
	case typeFloat64:
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(bo.Uint64(buf[i*8:]))
		}
	case typeInt8:
		for i := 0; i < n; i++ {
			if unsigned {
				out[i] = float64(buf[i])
			} else {
				out[i] = float64(int8(buf[i]))
			}
		}
	case typeInt16:
		for i := 0; i < n; i++ {
			if unsigned {
				out[i] = float64(bo.Uint16(buf[i*2:]))
			} else {
				out[i] = float64(int16(bo.Uint16(buf[i*2:])))
			}
		}
	case typeInt32:
		for i := 0; i < n; i++ {
			if unsigned {
				out[i] = float64(bo.Uint32(buf[i*4:]))
			} else {
				out[i] = float64(int32(bo.Uint32(buf[i*4:])))
			}
		}
	default:
		return nil, ErrTypeNotSupported
	}

	return out, nil
}

// validateSizes rejects corrupt optional-block sizes before any offset
// arithmetic uses them.
func validateSizes(bh *binHeader5) error {
	if bh.FormulaSize < 0 {
		return fmt.Errorf("invalid formula size %d", bh.FormulaSize)
	}
	if bh.NoteSize < 0 {
		return fmt.Errorf("invalid note size %d", bh.NoteSize)
	}
	if bh.DataEUnitsSize < 0 {
		return fmt.Errorf("invalid data units size %d", bh.DataEUnitsSize)
	}
	for d, size := range bh.DimEUnitsSize {
		if size < 0 {
			return fmt.Errorf("invalid dimension %d units size %d", d, size)
		}
	}
	for d, size := range bh.DimLabelsSize {
		if size < 0 {
			return fmt.Errorf("invalid dimension %d labels size %d", d, size)
		}
	}
	return nil
}

// channelLabels extracts the layer-dimension labels from the optional
// blocks following the wave data. The first 32-byte entry of a dimension
// label block names the dimension as a whole and is skipped. Sizes have
// been validated as non-negative, but the sum may still exceed the file,
// so the block is bounds-checked in 64 bits before slicing.
func channelLabels(buf []byte, bh *binHeader5) ([]string, error) {
	off := int64(bh.FormulaSize) + int64(bh.NoteSize) + int64(bh.DataEUnitsSize)
	for d := 0; d < maxDims; d++ {
		off += int64(bh.DimEUnitsSize[d])
	}
	for d := 0; d < layerDim; d++ {
		off += int64(bh.DimLabelsSize[d])
	}

	blockSize := int64(bh.DimLabelsSize[layerDim])
	if blockSize == 0 {
		return nil, fmt.Errorf("wave has no layer labels")
	}
	if off+blockSize > int64(len(buf)) || blockSize%labelSize != 0 {
		return nil, fmt.Errorf("invalid label block: offset %d size %d in %d bytes", off, blockSize, len(buf))
	}

	offset, size := int(off), int(blockSize)
	block := buf[offset : offset+size]
	var labels []string
	for at := labelSize; at < size; at += labelSize {
		labels = append(labels, string(bytes.TrimRight(block[at:at+labelSize], "\x00")))
	}

	return labels, nil
}

// index builds a dimension index of n evenly spaced points from start to
// start+step*n inclusive, matching the instrument software's convention.
func index(start, step float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}

	span := step * float64(n)
	for i := range out {
		out[i] = start + span*float64(i)/float64(n-1)
	}

	return out
}
