package astc

// Integer sequence encoding (ISE): packs a run of small integers plus an interleaved trit or
// quint digit stream into a bitstream, the format ASTC uses for both weight grids and color
// endpoint values.

var integerOfQuints [5][5][5]uint8
var integerOfTrits [3][3][3][3][3]uint8

func init() {
	// Build inverse tables from the decoder tables. Multiple packed integers can map to the
	// same unpacked tuple; any stable choice round-trips correctly for our use cases.
	for packed := 0; packed < len(quintsOfInteger); packed++ {
		q := quintsOfInteger[packed]
		integerOfQuints[q[2]][q[1]][q[0]] = uint8(packed)
	}
	for packed := 0; packed < len(tritsOfInteger); packed++ {
		t := tritsOfInteger[packed]
		integerOfTrits[t[4]][t[3]][t[2]][t[1]][t[0]] = uint8(packed)
	}
}

func writeBits(bitCount int, bitOffset int, data []byte, value uint32) {
	if bitCount <= 0 {
		return
	}
	mask := uint32((1 << uint(bitCount)) - 1)
	value &= mask

	byteOff := bitOffset >> 3
	shift := uint(bitOffset & 7)

	value <<= shift
	mask <<= shift
	mask = ^mask

	if byteOff < len(data) {
		data[byteOff] = (data[byteOff] & byte(mask)) | byte(value)
	}
	if byteOff+1 < len(data) {
		data[byteOff+1] = (data[byteOff+1] & byte(mask>>8)) | byte(value>>8)
	}
}

func encodeISE(q quantMethod, charCount int, input []uint8, output []byte, bitOffset int) {
	if charCount <= 0 {
		panic("astc: encodeISE: charCount must be > 0")
	}
	if len(input) < charCount {
		panic("astc: encodeISE: input too small")
	}

	btq := btqCounts[q]
	bits := int(btq.bits)
	trits := btq.trits
	quints := btq.quints

	mask := uint8(0)
	if bits != 0 {
		mask = uint8((1 << uint(bits)) - 1)
	}

	switch {
	case trits:
		// Five values share one trit digit (T, 0..242); the last group of a non-multiple-of-5
		// run is simply truncated, since the per-element bit slice of T doesn't depend on how
		// many elements are actually present.
		tbitsFull := [5]int{2, 2, 1, 2, 1}
		tshiftFull := [5]int{0, 2, 4, 5, 7}
		encodeISEGroups(charCount, 5, tbitsFull[:], tshiftFull[:], mask, bits, input, output, bitOffset,
			func(idx [5]uint8) uint8 {
				return integerOfTrits[idx[4]][idx[3]][idx[2]][idx[1]][idx[0]]
			})
	case quints:
		// Three values share one quint digit (T, 0..24).
		tbitsFull := [5]int{3, 2, 2}
		tshiftFull := [5]int{0, 3, 5}
		encodeISEGroups(charCount, 3, tbitsFull[:], tshiftFull[:], mask, bits, input, output, bitOffset,
			func(idx [5]uint8) uint8 {
				return integerOfQuints[idx[2]][idx[1]][idx[0]]
			})
	default:
		for i := 0; i < charCount; i++ {
			writeBits(bits, bitOffset, output, uint32(input[i]))
			bitOffset += bits
		}
	}
}

// encodeISEGroups writes charCount elements in groups of groupSize, each group sharing one
// trit/quint digit looked up via lookupT from the group's group-size element indices (zero-padded
// for a short final group). tbitsFull/tshiftFull give the digit's bit-width and shift for each
// position within a full group; a short final group just uses the matching prefix of both.
func encodeISEGroups(charCount, groupSize int, tbitsFull, tshiftFull []int, mask uint8, bits int, input []uint8, output []byte, bitOffset int, lookupT func(idx [5]uint8) uint8) {
	for i := 0; i < charCount; i += groupSize {
		n := groupSize
		if charCount-i < n {
			n = charCount - i
		}

		var idx [5]uint8
		for k := 0; k < groupSize; k++ {
			if i+k < charCount {
				idx[k] = input[i+k] >> bits
			}
		}
		T := lookupT(idx)

		for j := 0; j < n; j++ {
			tbits := tbitsFull[j]
			pack := (input[i+j] & mask) | (((T >> uint(tshiftFull[j])) & uint8((1<<uint(tbits))-1)) << bits)
			writeBits(bits+tbits, bitOffset, output, uint32(pack))
			bitOffset += bits + tbits
		}
	}
}
