package ibw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Description summarizes a wave header without decoding the data.
type Description struct {
	Name   string
	Type   string
	Dims   [maxDims]int
	Points int
}

// Describe reads only the header of an .ibw file.
func Describe(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, fmt.Errorf("opening %s: %s", path, err)
	}
	defer f.Close()

	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return Description{}, fmt.Errorf("reading header: %s", err)
	}

	bo, err := byteOrder(buf)
	if err != nil {
		return Description{}, err
	}
	if err := verifyChecksum(buf, bo); err != nil {
		return Description{}, err
	}

	var wh waveHeader5
	if err := binary.Read(bytes.NewReader(buf[binHeaderSize:]), bo, &wh); err != nil {
		return Description{}, fmt.Errorf("parsing wave header: %s", err)
	}

	d := Description{
		Name:   string(bytes.TrimRight(wh.Bname[:], "\x00")),
		Type:   typeName(wh.Type),
		Points: int(wh.Npnts),
	}
	for i := range d.Dims {
		d.Dims[i] = int(wh.NDim[i])
	}

	return d, nil
}

func typeName(t int16) string {
	if t&typeComplex != 0 {
		return "complex"
	}

	var name string
	switch t &^ typeUnsigned {
	case typeFloat32:
		return "float32"
	case typeFloat64:
		return "float64"
	case typeInt8:
		name = "int8"
	case typeInt16:
		name = "int16"
	case typeInt32:
		name = "int32"
	default:
		return fmt.Sprintf("unknown (0x%02x)", t)
	}

	if t&typeUnsigned != 0 {
		return "u" + name
	}
	return name
}
