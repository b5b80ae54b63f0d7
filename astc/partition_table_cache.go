package astc

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

type partitionTableKey struct {
	bx uint8
	by uint8
	bz uint8
	pc uint8
}

type partitionTable struct {
	texelCount int
	// data is indexed as [partitionIndex][texelIndex] where partitionIndex is 0..1023.
	data []uint8
}

var partitionTables struct {
	mu    sync.RWMutex
	m     map[partitionTableKey]*partitionTable
	build singleflight.Group
}

// getPartitionTable returns the cached procedural partition assignment table for a given block
// size and partition count, building it on first use. Building enumerates all 1024 partition
// seeds the format allows, so concurrent misses for the same key are collapsed onto a single
// builder rather than duplicating that work per caller.
func getPartitionTable(blockX, blockY, blockZ, partitionCount int) *partitionTable {
	if partitionCount <= 1 {
		return nil
	}

	key := partitionTableKey{
		bx: uint8(blockX),
		by: uint8(blockY),
		bz: uint8(blockZ),
		pc: uint8(partitionCount),
	}

	if t := lookupPartitionTable(key); t != nil {
		return t
	}

	sfKey := string([]byte{key.bx, key.by, key.bz, key.pc})
	v, _, _ := partitionTables.build.Do(sfKey, func() (any, error) {
		if t := lookupPartitionTable(key); t != nil {
			return t, nil
		}
		t := buildPartitionTable(blockX, blockY, blockZ, partitionCount)

		partitionTables.mu.Lock()
		if partitionTables.m == nil {
			partitionTables.m = make(map[partitionTableKey]*partitionTable)
		}
		partitionTables.m[key] = t
		partitionTables.mu.Unlock()
		return t, nil
	})
	return v.(*partitionTable)
}

func lookupPartitionTable(key partitionTableKey) *partitionTable {
	partitionTables.mu.RLock()
	defer partitionTables.mu.RUnlock()
	if partitionTables.m == nil {
		return nil
	}
	return partitionTables.m[key]
}

func buildPartitionTable(blockX, blockY, blockZ, partitionCount int) *partitionTable {
	texelCount := blockX * blockY * blockZ
	smallBlock := texelCount < 32
	data := make([]uint8, (1<<partitionIndexBits)*texelCount)

	for pidx := 0; pidx < (1 << partitionIndexBits); pidx++ {
		base := pidx * texelCount
		tix := 0
		for z := 0; z < blockZ; z++ {
			for y := 0; y < blockY; y++ {
				for x := 0; x < blockX; x++ {
					data[base+tix] = selectPartition(pidx, x, y, z, partitionCount, smallBlock)
					tix++
				}
			}
		}
	}

	return &partitionTable{texelCount: texelCount, data: data}
}

func (t *partitionTable) partitionsForIndex(partitionIndex int) []uint8 {
	if t == nil {
		return nil
	}
	// The ASTC format encodes 10 bits for the partition index.
	partitionIndex &= (1 << partitionIndexBits) - 1
	base := partitionIndex * t.texelCount
	return t.data[base : base+t.texelCount]
}
