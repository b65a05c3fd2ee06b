// Package helpers provides common utilities for package and integration
// tests, most importantly a synthetic Igor Binary Wave encoder so tests
// do not depend on instrument data files.
package helpers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Igor type code for 32-bit float waves, the type the MFP-3D writes.
const typeFloat32 = 0x02

const (
	binHeaderSize  = 64
	waveHeaderSize = 320
	labelSize      = 32
)

// Wave describes a synthetic MFP-3D image wave. Channels hold row-major
// data, one slice per channel, each of length XDim*YDim where the value
// for grid point (i, j) is at index i*YDim+j.
type Wave struct {
	XDim, YDim      int
	XStart, XStep   float64
	YStart, YStep   float64
	Labels          []string
	Channels        [][]float64
	Note            string
	BigEndian       bool
	SkipChecksum    bool
	VersionOverride int16
}

// Encode serializes the wave as a version 5 Igor Binary Wave.
func (w Wave) Encode() ([]byte, error) {
	if len(w.Channels) != len(w.Labels) {
		return nil, fmt.Errorf("%d channels but %d labels", len(w.Channels), len(w.Labels))
	}
	for idx, ch := range w.Channels {
		if len(ch) != w.XDim*w.YDim {
			return nil, fmt.Errorf("channel %d has %d values, want %d", idx, len(ch), w.XDim*w.YDim)
		}
	}

	bo := binary.ByteOrder(binary.LittleEndian)
	if w.BigEndian {
		bo = binary.BigEndian
	}

	nchan := len(w.Channels)
	npnts := w.XDim * w.YDim * nchan
	labelBlock := (nchan + 1) * labelSize

	version := int16(5)
	if w.VersionOverride != 0 {
		version = w.VersionOverride
	}

	header := make([]byte, binHeaderSize+waveHeaderSize)

	// BinHeader5
	bo.PutUint16(header[0:], uint16(version))
	// checksum at offset 2, filled in last
	bo.PutUint32(header[4:], uint32(waveHeaderSize+npnts*4)) // wfmSize
	bo.PutUint32(header[12:], uint32(len(w.Note)))           // noteSize
	// dimLabelsSize[0..3] at offset 36
	bo.PutUint32(header[36+4*2:], uint32(labelBlock)) // layer dimension labels

	// WaveHeader5
	wh := header[binHeaderSize:]
	bo.PutUint32(wh[12:], uint32(npnts))       // npnts
	bo.PutUint16(wh[16:], uint16(typeFloat32)) // type
	copy(wh[28:], "image")                     // bname

	// nDim at offset 64+4 (after bname block fields): next(4) creationDate(4)
	// modDate(4) npnts(4) type(2) dLock(2) whpad1(6) whVersion(2) bname(32)
	// whpad2(4) dFolder(4) = 68
	const nDimOff = 68
	bo.PutUint32(wh[nDimOff:], uint32(w.XDim))
	bo.PutUint32(wh[nDimOff+4:], uint32(w.YDim))
	bo.PutUint32(wh[nDimOff+8:], uint32(nchan))

	const sfAOff = nDimOff + 16
	bo.PutUint64(wh[sfAOff:], math.Float64bits(w.XStep))
	bo.PutUint64(wh[sfAOff+8:], math.Float64bits(w.YStep))
	bo.PutUint64(wh[sfAOff+16:], math.Float64bits(1))

	const sfBOff = sfAOff + 32
	bo.PutUint64(wh[sfBOff:], math.Float64bits(w.XStart))
	bo.PutUint64(wh[sfBOff+8:], math.Float64bits(w.YStart))

	if !w.SkipChecksum {
		var sum int16
		for i := 0; i < len(header); i += 2 {
			sum += int16(bo.Uint16(header[i : i+2]))
		}
		bo.PutUint16(header[2:], uint16(-sum))
	}

	var out bytes.Buffer
	out.Write(header)

	// wave data, first dimension fastest
	for c := 0; c < nchan; c++ {
		for j := 0; j < w.YDim; j++ {
			for i := 0; i < w.XDim; i++ {
				var b [4]byte
				bo.PutUint32(b[:], math.Float32bits(float32(w.Channels[c][i*w.YDim+j])))
				out.Write(b[:])
			}
		}
	}

	out.WriteString(w.Note)

	// layer dimension labels; entry 0 names the dimension as a whole
	labels := make([]byte, labelBlock)
	for idx, label := range w.Labels {
		copy(labels[(idx+1)*labelSize:], label)
	}
	out.Write(labels)

	return out.Bytes(), nil
}

// WriteIBW encodes the wave and writes it to dir with the given name,
// returning the full path.
func WriteIBW(t *testing.T, dir, name string, w Wave) string {
	t.Helper()

	buf, err := w.Encode()
	if err != nil {
		t.Fatalf("encoding wave: %s", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("writing %s: %s", path, err)
	}

	return path
}

// GradientWave builds a wave whose single HeightTrace channel is the plane
// z = ax*x + by*y sampled on an n x n grid, useful for leveling tests.
func GradientWave(n int, ax, by float64) Wave {
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = ax*float64(i) + by*float64(j)
		}
	}

	return Wave{
		XDim: n, YDim: n,
		XStep: 1e-6 / float64(n), YStep: 1e-6 / float64(n),
		Labels:   []string{"HeightTrace"},
		Channels: [][]float64{data},
	}
}
