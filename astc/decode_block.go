package astc

import "errors"

var errUnsupportedProfileRGBA8 = errors.New("astc: DecodeRGBA8 only supports LDR profiles")

// mixRGBA8 writes one decoded RGBA8 texel given its pair of endpoint colors (e0, delta) and the
// interpolation weight(s) that select a point between them. Dual-plane blocks route a second,
// independently-decoded weight to whichever single channel plane2Component names; every other
// channel uses w1. A non-dual-plane texel passes w1 == w2 so the same path covers both cases.
func mixRGBA8(dst []byte, off int, e0, delta [4]int, w1, w2, plane2Component int) {
	wc := [4]int{w1, w1, w1, w1}
	wc[plane2Component] = w2
	dst[off+0] = uint8((e0[0] + ((delta[0]*wc[0] + 32) >> 6)) >> 8)
	dst[off+1] = uint8((e0[1] + ((delta[1]*wc[1] + 32) >> 6)) >> 8)
	dst[off+2] = uint8((e0[2] + ((delta[2]*wc[2] + 32) >> 6)) >> 8)
	dst[off+3] = uint8((e0[3] + ((delta[3]*wc[3] + 32) >> 6)) >> 8)
}

// decimatedWeight reconstructs the interpolation weight for one texel from the up-to-4 stored
// grid weights and bilinear-style contribution factors a decimated weight grid assigns it. offset
// selects plane 1 (0) or the second independent weight plane of a dual-plane block.
func decimatedWeight(wvals []uint8, e decimationEntry, offset int) int {
	sum := uint32(8)
	sum += uint32(wvals[int(e.idx[0])+offset]) * uint32(e.w[0])
	sum += uint32(wvals[int(e.idx[1])+offset]) * uint32(e.w[1])
	sum += uint32(wvals[int(e.idx[2])+offset]) * uint32(e.w[2])
	sum += uint32(wvals[int(e.idx[3])+offset]) * uint32(e.w[3])
	return int(sum >> 4)
}

func decodeBlockToRGBA8(profile Profile, ctx *decodeContext, block []byte, out []byte) {
	texelCount := ctx.texelCount
	dst := out[:texelCount*4]

	scb := physicalToSymbolicWithCtx(block, ctx)
	switch scb.blockType {
	case symBlockError:
		fillErrorRGBA8(dst)
		return
	case symBlockConstU16:
		r := uint8(scb.constantColor[0] >> 8)
		g := uint8(scb.constantColor[1] >> 8)
		b := uint8(scb.constantColor[2] >> 8)
		a := uint8(scb.constantColor[3] >> 8)
		fillConstRGBA8(dst, r, g, b, a)
		return
	case symBlockConstF16:
		// FP16 constant blocks are only valid in HDR profiles.
		fillErrorRGBA8(dst)
		return
	}

	bmi := ctx.blockModes[scb.blockMode]
	if !bmi.ok {
		fillErrorRGBA8(dst)
		return
	}

	partitionCount := int(scb.partitionCount)

	// Pre-decode endpoints for each partition.
	var ep0 [blockMaxPartitions][4]int
	var epd [blockMaxPartitions][4]int
	for p := 0; p < partitionCount; p++ {
		_, _, e0, e1 := unpackColorEndpoints(profile, scb.colorFormats[p], scb.colorValues[p][:])
		ep0[p] = e0
		epd[p] = [4]int{e1[0] - e0[0], e1[1] - e0[1], e1[2] - e0[2], e1[3] - e0[3]}
	}

	plane2Component := int(scb.plane2Component)
	if bmi.isDualPlane && (plane2Component < 0 || plane2Component > 3) {
		fillErrorRGBA8(dst)
		return
	}

	partOf := func(tix int) int { return 0 }
	if partitionCount > 1 {
		pt := ctx.partitionTables[partitionCount]
		if pt == nil {
			fillErrorRGBA8(dst)
			return
		}
		pidx := int(scb.partitionIndex) & ((1 << partitionIndexBits) - 1)
		partByTexel := pt.data[pidx*texelCount : pidx*texelCount+texelCount]
		partOf = func(tix int) int { return int(partByTexel[tix]) }
	}

	if bmi.noDecimation {
		wTex1 := scb.weights[:texelCount]
		if !bmi.isDualPlane {
			off := 0
			for tix := 0; tix < texelCount; tix++ {
				part := partOf(tix)
				w := int(wTex1[tix])
				mixRGBA8(dst, off, ep0[part], epd[part], w, w, 0)
				off += 4
			}
			return
		}

		wTex2 := scb.weights[weightsPlane2Offset : weightsPlane2Offset+texelCount]
		off := 0
		for tix := 0; tix < texelCount; tix++ {
			part := partOf(tix)
			mixRGBA8(dst, off, ep0[part], epd[part], int(wTex1[tix]), int(wTex2[tix]), plane2Component)
			off += 4
		}
		return
	}

	dec := bmi.decimation
	wvals := scb.weights[:]
	if !bmi.isDualPlane {
		off := 0
		for tix := 0; tix < texelCount; tix++ {
			part := partOf(tix)
			w := decimatedWeight(wvals, dec[tix], 0)
			mixRGBA8(dst, off, ep0[part], epd[part], w, w, 0)
			off += 4
		}
		return
	}

	off := 0
	for tix := 0; tix < texelCount; tix++ {
		e := dec[tix]
		w1 := decimatedWeight(wvals, e, 0)
		w2 := decimatedWeight(wvals, e, weightsPlane2Offset)
		part := partOf(tix)
		mixRGBA8(dst, off, ep0[part], epd[part], w1, w2, plane2Component)
		off += 4
	}
}

func fillConstRGBA8(dst []byte, r, g, b, a uint8) {
	for i := 0; i < len(dst); i += 4 {
		dst[i+0] = r
		dst[i+1] = g
		dst[i+2] = b
		dst[i+3] = a
	}
}

func fillErrorRGBA8(dst []byte) {
	fillConstRGBA8(dst, 0xFF, 0x00, 0xFF, 0xFF)
}
