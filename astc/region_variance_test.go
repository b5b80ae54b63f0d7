package astc_test

import (
	"testing"

	"github.com/gotextures/astc/astc"
)

func TestContext_CompressDecompress_Perceptual_RoundTrips(t *testing.T) {
	cfg, err := astc.ConfigInit(astc.ProfileLDR, 4, 4, 1, 60, astc.FlagUsePerceptual)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	ctx, err := astc.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}

	const w, h, d = 16, 16, 1
	src := make([]byte, w*h*d*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			if x < w/2 {
				// Flat fill.
				src[off+0] = 40
				src[off+1] = 80
				src[off+2] = 120
				src[off+3] = 255
			} else {
				// High-frequency checker pattern.
				v := byte(0)
				if (x+y)%2 == 0 {
					v = 255
				}
				src[off+0] = v
				src[off+1] = v
				src[off+2] = v
				src[off+3] = 255
			}
		}
	}

	blocks := make([]byte, blocksLenBytes(w, h, d, int(cfg.BlockX), int(cfg.BlockY), int(cfg.BlockZ)))
	img := astc.Image{DimX: w, DimY: h, DimZ: d, DataType: astc.TypeU8, DataU8: src}
	if err := ctx.CompressImage(&img, astc.SwizzleRGBA, blocks, 0); err != nil {
		t.Fatalf("CompressImage: %v", err)
	}
	if err := ctx.CompressReset(); err != nil {
		t.Fatalf("CompressReset: %v", err)
	}

	dst := make([]byte, len(src))
	out := astc.Image{DimX: w, DimY: h, DimZ: d, DataType: astc.TypeU8, DataU8: dst}
	if err := ctx.DecompressImage(blocks, &out, astc.SwizzleRGBA, 0); err != nil {
		t.Fatalf("DecompressImage: %v", err)
	}

	// Perceptual weighting only biases RDO, it must not produce error blocks.
	var first [astc.BlockBytes]byte
	copy(first[:], blocks[:astc.BlockBytes])
	info, err := ctx.GetBlockInfo(first)
	if err != nil {
		t.Fatalf("GetBlockInfo: %v", err)
	}
	if info.IsErrorBlock {
		t.Fatalf("unexpected error block with FlagUsePerceptual set")
	}
}

func TestContainer_CompressDecompress_RoundTrips(t *testing.T) {
	astcData, err := astc.EncodeRGBA8(make([]byte, 8*8*4), 8, 8, 4, 4)
	if err != nil {
		t.Fatalf("EncodeRGBA8: %v", err)
	}

	packed, err := astc.CompressContainer(astcData)
	if err != nil {
		t.Fatalf("CompressContainer: %v", err)
	}
	if len(packed) == 0 {
		t.Fatalf("CompressContainer: got empty output")
	}

	unpacked, err := astc.DecompressContainer(packed)
	if err != nil {
		t.Fatalf("DecompressContainer: %v", err)
	}
	if string(unpacked) != string(astcData) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d bytes", len(unpacked), len(astcData))
	}
}
