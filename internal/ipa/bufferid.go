package ipa

// BufferID is the stable wire identifier the controller hands the IPA
// for a param or stat buffer (§4.3). It survives re-MAP_BUFFERS calls
// as long as the underlying pool index does not change.
type BufferID uint32

// Base tags identify which pool a BufferID's index refers to. They
// occupy bits 8-9 so indices up to 255 fit in the low byte.
const (
	ParamBase BufferID = 0x100
	StatBase  BufferID = 0x200
)

const indexMask BufferID = 0x00FF

// EncodeParam builds the wire id for param pool slot index.
func EncodeParam(index int) BufferID {
	return ParamBase | (BufferID(index) & indexMask)
}

// EncodeStat builds the wire id for stat pool slot index.
func EncodeStat(index int) BufferID {
	return StatBase | (BufferID(index) & indexMask)
}

// IsParam reports whether id was minted by EncodeParam.
func (id BufferID) IsParam() bool {
	return id&ParamBase == ParamBase && id&StatBase == 0
}

// IsStat reports whether id was minted by EncodeStat.
func (id BufferID) IsStat() bool {
	return id&StatBase == StatBase
}

// Index extracts the buffer pool slot index encoded in id.
func (id BufferID) Index() int {
	return int(id & indexMask)
}
