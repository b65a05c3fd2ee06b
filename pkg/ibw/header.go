package ibw

// Igor Binary Wave version 5 layout, as written by the MFP-3D controller.
//
//	+------------------+-------------------+---------+-----------------------------+
//	| BinHeader5 (64)  | WaveHeader5 (320) | wData   | formula | note | ... labels |
//	+------------------+-------------------+---------+-----------------------------+
//
// All offsets are fixed for version 5. The optional blocks after the wave
// data appear in the order formula, note, extended data units, extended
// dimension units, dimension labels, string indices; their sizes are given
// in the bin header.

const (
	binHeaderSize  = 64
	waveHeaderSize = 320
	headerSize     = binHeaderSize + waveHeaderSize

	maxDims   = 4
	labelSize = 32

	// dimension holding the channel layers of an MFP-3D image
	layerDim = 2
)

// Igor wave data type codes. The unsigned bit may be combined with the
// integer codes.
const (
	typeComplex  = 0x01
	typeFloat32  = 0x02
	typeFloat64  = 0x04
	typeInt8     = 0x08
	typeInt16    = 0x10
	typeInt32    = 0x20
	typeUnsigned = 0x40
)

type binHeader5 struct {
	Version        int16
	Checksum       int16
	WfmSize        int32
	FormulaSize    int32
	NoteSize       int32
	DataEUnitsSize int32
	DimEUnitsSize  [maxDims]int32
	DimLabelsSize  [maxDims]int32
	SIndicesSize   int32
	OptionsSize1   int32
	OptionsSize2   int32
}

type waveHeader5 struct {
	Next         uint32
	CreationDate uint32
	ModDate      uint32
	Npnts        int32
	Type         int16
	DLock        int16
	Whpad1       [6]byte
	WhVersion    int16
	Bname        [32]byte
	Whpad2       int32
	DFolder      uint32
	NDim         [maxDims]int32
	SfA          [maxDims]float64
	SfB          [maxDims]float64
	DataUnits    [4]byte
	DimUnits     [maxDims][4]byte
	FsValid      int16
	Whpad3       int16
	TopFullScale float64
	BotFullScale float64
	DataEUnits   uint32
	DimEUnits    [maxDims]uint32
	DimLabels    [maxDims]uint32
	WaveNoteH    uint32
	WhUnused     [16]uint32
	AModified    int16
	WModified    int16
	SwModified   int16
	UseBits      byte
	KindBits     byte
	Formula      uint32
	DepID        int32
	Whpad4       int16
	SrcFldr      int16
	FileName     uint32
	SIndices     uint32
}

func itemSize(waveType int16) (int, error) {
	if waveType&typeComplex != 0 {
		return 0, ErrComplexNotSupported
	}

	switch waveType &^ typeUnsigned {
	case typeFloat32:
		return 4, nil
	case typeFloat64:
		return 8, nil
	case typeInt8:
		return 1, nil
	case typeInt16:
		return 2, nil
	case typeInt32:
		return 4, nil
	default:
		return 0, ErrTypeNotSupported
	}
}
