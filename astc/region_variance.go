package astc

import (
	"github.com/ajroetker/go-highway/hwy"
)

// regionVarianceRadius is the neighborhood half-width used when scoring local
// perceptual flatness. A 3x3 footprint is enough to tell flat fills from
// detail without the cost of a wide alpha-scale style radius.
const regionVarianceRadius = 1

// perceptualVarianceScale controls how aggressively high-variance (busy)
// regions are down-weighted relative to flat ones. Tuned empirically against
// the existing alpha-scale heuristic rather than derived analytically.
const perceptualVarianceScale = 4.0

// computeRegionPerceptualWeights scores every texel by how flat its local
// neighborhood is, for use as a per-block RGB weight multiplier under
// FlagUsePerceptual. Flat regions score near 1.0; regions with high
// local luma variance score lower so RDO doesn't spend bits hiding error
// there at the expense of visually busier blocks.
func computeRegionPerceptualWeights(img *Image, inType DataType, radius int) []float32 {
	if img == nil {
		return nil
	}

	width, height, depth := img.DimX, img.DimY, img.DimZ
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil
	}
	texelCount := width * height * depth
	if texelCount <= 0 {
		return nil
	}

	r := make([]float32, texelCount)
	g := make([]float32, texelCount)
	b := make([]float32, texelCount)

	switch inType {
	case TypeU8:
		const inv255 = 1.0 / 255.0
		for i := 0; i < texelCount; i++ {
			off := i * 4
			r[i] = float32(img.DataU8[off+0]) * inv255
			g[i] = float32(img.DataU8[off+1]) * inv255
			b[i] = float32(img.DataU8[off+2]) * inv255
		}
	case TypeF16:
		for i := 0; i < texelCount; i++ {
			off := i * 4
			r[i] = halfToFloat32(img.DataF16[off+0])
			g[i] = halfToFloat32(img.DataF16[off+1])
			b[i] = halfToFloat32(img.DataF16[off+2])
		}
	case TypeF32:
		for i := 0; i < texelCount; i++ {
			off := i * 4
			r[i] = img.DataF32[off+0]
			g[i] = img.DataF32[off+1]
			b[i] = img.DataF32[off+2]
		}
	default:
		return nil
	}

	luma := computeLumaVector(r, g, b)

	lumaSq := make([]float32, texelCount)
	for i, v := range luma {
		lumaSq[i] = v * v
	}

	avgLuma := separableBoxFilter(luma, width, height, depth, radius)
	avgLumaSq := separableBoxFilter(lumaSq, width, height, depth, radius)

	weights := make([]float32, texelCount)
	for i := 0; i < texelCount; i++ {
		variance := avgLumaSq[i] - avgLuma[i]*avgLuma[i]
		if variance < 0 {
			variance = 0
		}
		weights[i] = 1.0 / (1.0 + perceptualVarianceScale*variance)
	}
	return weights
}

// computeLumaVector combines per-channel texel values into a Rec. 601 luma
// channel, processed a SIMD lane at a time via hwy.
func computeLumaVector(r, g, b []float32) []float32 {
	n := len(r)
	out := make([]float32, n)

	lanes := hwy.NumLanes[float32]()
	wr := hwy.Set(float32(0.299))
	wg := hwy.Set(float32(0.587))
	wb := hwy.Set(float32(0.114))

	i := 0
	for ; i+lanes <= n; i += lanes {
		rv := hwy.Load(r[i:])
		gv := hwy.Load(g[i:])
		bv := hwy.Load(b[i:])

		acc := hwy.Mul(rv, wr)
		acc = hwy.Add(acc, hwy.Mul(gv, wg))
		acc = hwy.Add(acc, hwy.Mul(bv, wb))

		hwy.Store(acc, out[i:])
	}

	for ; i < n; i++ {
		out[i] = 0.299*r[i] + 0.587*g[i] + 0.114*b[i]
	}

	return out
}

// blockPerceptualScale averages the precomputed per-texel perceptual weight
// over a block's texel footprint, clamped to the image bounds.
func blockPerceptualScale(weights []float32, width, height, depth, x0, y0, z0, blockX, blockY, blockZ int) float32 {
	endX := x0 + blockX
	if endX > width {
		endX = width
	}
	endY := y0 + blockY
	if endY > height {
		endY = height
	}
	endZ := z0 + blockZ
	if endZ > depth {
		endZ = depth
	}

	planeSize := width * height

	sum := float32(0)
	count := 0
	for z := z0; z < endZ; z++ {
		zBase := z * planeSize
		for y := y0; y < endY; y++ {
			rowBase := zBase + y*width
			for x := x0; x < endX; x++ {
				sum += weights[rowBase+x]
				count++
			}
		}
	}

	if count == 0 {
		return 1.0
	}
	return sum / float32(count)
}

// separableBoxFilter runs a 2D (or 3D, when depth > 1) box filter over src
// with edge-replicated borders, using a running-sum sliding window per axis.
// Shared by the alpha-scale RDO precompute and the perceptual weight
// precompute, which both need the same separable-average idiom over
// different per-texel scalar fields.
func separableBoxFilter(src []float32, width, height, depth, radius int) []float32 {
	texelCount := width * height * depth
	if radius <= 0 {
		out := make([]float32, texelCount)
		copy(out, src)
		return out
	}

	haveZ := depth > 1
	kdim := 2*radius + 1
	planeSize := width * height

	a := make([]float32, texelCount)
	copy(a, src)
	tmp := make([]float32, texelCount)

	for z := 0; z < depth; z++ {
		zBase := z * planeSize
		for y := 0; y < height; y++ {
			rowBase := zBase + y*width

			sum := float32(0)
			for dx := -radius; dx <= radius; dx++ {
				sum += a[rowBase+clampIndex(dx, width)]
			}
			tmp[rowBase+0] = sum

			for x := 1; x < width; x++ {
				removeX := clampIndex(x-radius-1, width)
				addX := clampIndex(x+radius, width)
				sum += a[rowBase+addX] - a[rowBase+removeX]
				tmp[rowBase+x] = sum
			}
		}
	}

	for z := 0; z < depth; z++ {
		zBase := z * planeSize
		for x := 0; x < width; x++ {
			sum := float32(0)
			for dy := -radius; dy <= radius; dy++ {
				sum += tmp[zBase+clampIndex(dy, height)*width+x]
			}
			a[zBase+x] = sum

			for y := 1; y < height; y++ {
				removeY := clampIndex(y-radius-1, height)
				addY := clampIndex(y+radius, height)
				sum += tmp[zBase+addY*width+x] - tmp[zBase+removeY*width+x]
				a[zBase+y*width+x] = sum
			}
		}
	}

	if !haveZ {
		inv := 1.0 / float32(kdim*kdim)
		for i := range a {
			a[i] *= inv
		}
		return a
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := float32(0)
			for dz := -radius; dz <= radius; dz++ {
				sum += a[clampIndex(dz, depth)*planeSize+y*width+x]
			}
			tmp[y*width+x] = sum

			for z := 1; z < depth; z++ {
				removeZ := clampIndex(z-radius-1, depth)
				addZ := clampIndex(z+radius, depth)
				sum += a[addZ*planeSize+y*width+x] - a[removeZ*planeSize+y*width+x]
				tmp[z*planeSize+y*width+x] = sum
			}
		}
	}

	inv := 1.0 / float32(kdim*kdim*kdim)
	for i := range tmp {
		tmp[i] *= inv
	}
	return tmp
}

func clampIndex(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}
