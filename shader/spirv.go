package shader

import (
	"encoding/binary"
	"fmt"
)

// Words converts a SPIR-V byte stream to its little-endian 32-bit words and
// checks the module header.
func Words(spv []byte) ([]uint32, error) {
	if len(spv) < 4 || len(spv)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V size %d is not a positive multiple of 4", ErrShaderBinary, len(spv))
	}
	words := make([]uint32, len(spv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spv[i*4:])
	}
	if words[0] != SpirVMagic {
		return nil, fmt.Errorf("%w: bad SPIR-V magic %#08x", ErrShaderBinary, words[0])
	}
	return words, nil
}

// Bytes converts SPIR-V words back to a little-endian byte stream.
func Bytes(words []uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}
