package astc

// selectBestPartitionIndicesU16 picks a small set of promising partition seeds to try for 16-bit
// per-channel texel data (e.g. UNORM16 or LNS codes in the 0..65535 range).
//
// The semantics match selectBestPartitionIndices, just over a wider per-channel code; both
// reduce to the shared scoring routine in partition_scoring.go.
func selectBestPartitionIndicesU16(dst []int, texels [][4]uint16, pt *partitionTable, partitionCount int, searchLimit int, includeAlpha bool) int {
	if pt == nil {
		return 0
	}
	texelCount := pt.texelCount
	if texelCount <= 0 || len(texels) < texelCount {
		return 0
	}
	return selectBestPartitionSeeds(dst, pt, partitionCount, searchLimit, texelCount, includeAlpha, func(t int) (r, g, b, a uint64) {
		px := texels[t]
		return uint64(px[0]), uint64(px[1]), uint64(px[2]), uint64(px[3])
	})
}
