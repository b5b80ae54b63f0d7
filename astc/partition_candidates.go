package astc

// selectBestPartitionIndices picks a small set of promising partition seeds to try, for 8-bit
// per-channel texel data laid out as four interleaved bytes (R, G, B, A) per texel.
//
// It ranks seeds by their total within-partition SSE in RGB (and A if includeAlpha is true),
// and returns a deterministic list sorted by partition index. The dst slice is used as output
// storage; the returned value is the number of entries written.
func selectBestPartitionIndices(dst []int, texels []byte, pt *partitionTable, partitionCount int, searchLimit int, includeAlpha bool) int {
	if pt == nil {
		return 0
	}
	texelCount := pt.texelCount
	if texelCount <= 0 || len(texels) < texelCount*4 {
		return 0
	}
	return selectBestPartitionSeeds(dst, pt, partitionCount, searchLimit, texelCount, includeAlpha, func(t int) (r, g, b, a uint64) {
		off := t * 4
		return uint64(texels[off]), uint64(texels[off+1]), uint64(texels[off+2]), uint64(texels[off+3])
	})
}

// selectBestPartitionIndices2 is selectBestPartitionIndices specialized to partitionCount==2,
// the most common case in the 2-partition search path.
func selectBestPartitionIndices2(dst []int, texels []byte, pt *partitionTable, searchLimit int, includeAlpha bool) int {
	return selectBestPartitionIndices(dst, texels, pt, 2, searchLimit, includeAlpha)
}
