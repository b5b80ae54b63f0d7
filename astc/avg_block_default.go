//go:build !goexperiment.simd || !amd64

package astc

// avgBlockRGBA8 computes the per-channel rounded mean of a block's texels. Builds without the
// SIMD experiment always fall back to the scalar accumulator.
func avgBlockRGBA8(pix []byte, width, height, x0, y0, blockX, blockY int) (r, g, b, a uint8) {
	return avgBlockRGBA8Scalar(pix, width, height, x0, y0, blockX, blockY)
}
