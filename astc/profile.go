package astc

// Profile controls decoding behavior for ASTC endpoints.
//
// Note: ASTC files do not store a profile; it is a usage convention the caller must supply
// out of band, typically carried alongside the compressed data by the container format.
type Profile uint8

const (
	// ProfileLDR decodes using linear LDR rules.
	ProfileLDR Profile = iota
	// ProfileLDRSRGB decodes using sRGB LDR rules.
	ProfileLDRSRGB
	// ProfileHDRRGBLDRAlpha decodes using HDR RGB and LDR alpha rules.
	ProfileHDRRGBLDRAlpha
	// ProfileHDR decodes using HDR RGBA rules.
	ProfileHDR
)
