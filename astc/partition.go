package astc

// hash52 is the integer hash feeding selectPartition's procedural partition assignment. It has
// no meaning beyond matching the ASTC standard's partition-table generator bit-for-bit.
func hash52(inp uint32) uint32 {
	inp ^= inp >> 15
	inp *= 0xEEDE0891
	inp ^= inp >> 5
	inp += inp << 16
	inp ^= inp >> 7
	inp ^= inp >> 3
	inp ^= inp << 6
	inp ^= inp >> 17
	return inp
}

// partitionHashShifts derives the three pseudo-random shift amounts selectPartition mixes its
// twelve hash lanes with, themselves selected by low bits of the partition seed.
func partitionHashShifts(seed, partitionCount int) (sh1, sh2, sh3 int) {
	if (seed & 1) != 0 {
		if (seed & 2) != 0 {
			sh1 = 4
		} else {
			sh1 = 5
		}
		if partitionCount == 3 {
			sh2 = 6
		} else {
			sh2 = 5
		}
	} else {
		if partitionCount == 3 {
			sh1 = 6
		} else {
			sh1 = 5
		}
		if (seed & 2) != 0 {
			sh2 = 4
		} else {
			sh2 = 5
		}
	}

	sh3 = sh2
	if (seed & 0x10) != 0 {
		sh3 = sh1
	}
	return sh1, sh2, sh3
}

// selectPartition selects the partition index for a single texel coordinate, using the same
// procedural hash the ASTC standard defines for partition-table generation: twelve lanes peeled
// off one hash52 draw, squared, shifted, and combined into four candidate partition scores.
func selectPartition(seed, x, y, z, partitionCount int, smallBlock bool) uint8 {
	if smallBlock {
		x <<= 1
		y <<= 1
		z <<= 1
	}

	seed += (partitionCount - 1) * 1024
	rnum := hash52(uint32(seed))
	sh1, sh2, sh3 := partitionHashShifts(seed, partitionCount)

	lanes := [12]uint32{
		rnum & 0xF,
		(rnum >> 4) & 0xF,
		(rnum >> 8) & 0xF,
		(rnum >> 12) & 0xF,
		(rnum >> 16) & 0xF,
		(rnum >> 20) & 0xF,
		(rnum >> 24) & 0xF,
		(rnum >> 28) & 0xF,
		(rnum >> 18) & 0xF,
		(rnum >> 22) & 0xF,
		(rnum >> 26) & 0xF,
		((rnum >> 30) | (rnum << 2)) & 0xF,
	}
	shifts := [12]int{sh1, sh2, sh1, sh2, sh1, sh2, sh1, sh2, sh3, sh3, sh3, sh3}

	var v [12]int
	for i, lane := range lanes {
		v[i] = int((lane * lane) >> uint(shifts[i]))
	}

	a := (v[0]*x + v[1]*y + v[10]*z + int(rnum>>14)) & 0x3F
	b := (v[2]*x + v[3]*y + v[11]*z + int(rnum>>10)) & 0x3F
	c := (v[4]*x + v[5]*y + v[8]*z + int(rnum>>6)) & 0x3F
	d := (v[6]*x + v[7]*y + v[9]*z + int(rnum>>2)) & 0x3F

	if partitionCount <= 3 {
		d = 0
	}
	if partitionCount <= 2 {
		c = 0
	}
	if partitionCount <= 1 {
		b = 0
	}

	switch {
	case a >= b && a >= c && a >= d:
		return 0
	case b >= c && b >= d:
		return 1
	case c >= d:
		return 2
	default:
		return 3
	}
}
