package astc

// clampUnorm16 clamps an accumulated fixed-point interpolation result to the 16-bit domain the
// lookup tables are indexed by; values land outside [0, 0xFFFF] only from rounding at the extremes.
func clampUnorm16(v int) int {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return v
}

// mixRGBAF32 writes one decoded float32 texel given its pair of fixed-point endpoint values
// (e0, delta), the lookup table each channel is decoded through (LNS for HDR RGB/alpha, UNORM16
// otherwise), and the interpolation weight(s) selecting a point between the endpoints. Dual-plane
// blocks route a second, independently-decoded weight to whichever single channel plane2Component
// names; every other channel uses w1. A non-dual-plane texel passes w1 == w2.
func mixRGBAF32(dst []float32, off int, e0, delta [4]int, rgbTable, alphaTable *[1 << 16]float32, w1, w2, plane2Component int) {
	wc := [4]int{w1, w1, w1, w1}
	wc[plane2Component] = w2
	v := [4]int{
		clampUnorm16(e0[0] + ((delta[0]*wc[0] + 32) >> 6)),
		clampUnorm16(e0[1] + ((delta[1]*wc[1] + 32) >> 6)),
		clampUnorm16(e0[2] + ((delta[2]*wc[2] + 32) >> 6)),
		clampUnorm16(e0[3] + ((delta[3]*wc[3] + 32) >> 6)),
	}
	dst[off+0] = rgbTable[uint16(v[0])]
	dst[off+1] = rgbTable[uint16(v[1])]
	dst[off+2] = rgbTable[uint16(v[2])]
	dst[off+3] = alphaTable[uint16(v[3])]
}

func decodeBlockToRGBAF32(profile Profile, ctx *decodeContext, block []byte, out []float32) {
	texelCount := ctx.texelCount
	dst := out[:texelCount*4]

	scb := physicalToSymbolicWithCtx(block, ctx)
	switch scb.blockType {
	case symBlockError:
		fillErrorRGBAF32(dst)
		return
	case symBlockConstU16:
		r := unorm16ToFloat32Table[scb.constantColor[0]]
		g := unorm16ToFloat32Table[scb.constantColor[1]]
		b := unorm16ToFloat32Table[scb.constantColor[2]]
		a := unorm16ToFloat32Table[scb.constantColor[3]]
		fillConstRGBAF32(dst, r, g, b, a)
		return
	case symBlockConstF16:
		// FP16 constant blocks are only valid in HDR profiles.
		if profile == ProfileLDR || profile == ProfileLDRSRGB {
			fillErrorRGBAF32(dst)
			return
		}
		r := halfToFloat32(scb.constantColor[0])
		g := halfToFloat32(scb.constantColor[1])
		b := halfToFloat32(scb.constantColor[2])
		a := halfToFloat32(scb.constantColor[3])
		fillConstRGBAF32(dst, r, g, b, a)
		return
	}

	bmi := ctx.blockModes[scb.blockMode]
	if !bmi.ok {
		fillErrorRGBAF32(dst)
		return
	}

	partitionCount := int(scb.partitionCount)

	// Pre-decode endpoints and LNS-vs-UNORM16 lookup tables for each partition.
	var ep0 [blockMaxPartitions][4]int
	var epd [blockMaxPartitions][4]int
	var rgbTableByPart [blockMaxPartitions]*[1 << 16]float32
	var alphaTableByPart [blockMaxPartitions]*[1 << 16]float32
	for p := 0; p < partitionCount; p++ {
		rgbLNS, alphaLNS, e0, e1 := unpackColorEndpoints(profile, scb.colorFormats[p], scb.colorValues[p][:])
		ep0[p] = e0
		epd[p] = [4]int{e1[0] - e0[0], e1[1] - e0[1], e1[2] - e0[2], e1[3] - e0[3]}

		if rgbLNS {
			rgbTableByPart[p] = &lnsToFloat32Table
		} else {
			rgbTableByPart[p] = &unorm16ToFloat32Table
		}
		if alphaLNS {
			alphaTableByPart[p] = &lnsToFloat32Table
		} else {
			alphaTableByPart[p] = &unorm16ToFloat32Table
		}
	}

	plane2Component := int(scb.plane2Component)
	if bmi.isDualPlane && (plane2Component < 0 || plane2Component > 3) {
		fillErrorRGBAF32(dst)
		return
	}

	partOf := func(tix int) int { return 0 }
	if partitionCount > 1 {
		pt := ctx.partitionTables[partitionCount]
		if pt == nil {
			fillErrorRGBAF32(dst)
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
				mixRGBAF32(dst, off, ep0[part], epd[part], rgbTableByPart[part], alphaTableByPart[part], w, w, 0)
				off += 4
			}
			return
		}

		wTex2 := scb.weights[weightsPlane2Offset : weightsPlane2Offset+texelCount]
		off := 0
		for tix := 0; tix < texelCount; tix++ {
			part := partOf(tix)
			mixRGBAF32(dst, off, ep0[part], epd[part], rgbTableByPart[part], alphaTableByPart[part], int(wTex1[tix]), int(wTex2[tix]), plane2Component)
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
			mixRGBAF32(dst, off, ep0[part], epd[part], rgbTableByPart[part], alphaTableByPart[part], w, w, 0)
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
		mixRGBAF32(dst, off, ep0[part], epd[part], rgbTableByPart[part], alphaTableByPart[part], w1, w2, plane2Component)
		off += 4
	}
}
