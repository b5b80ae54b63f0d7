package astc_test

import (
	"errors"
	"testing"

	"github.com/gotextures/astc/astc"
)

func TestErrorString_MatchesKnownCodes(t *testing.T) {
	cases := []struct {
		code astc.ErrorCode
		want string
	}{
		{astc.Success, "success"},
		{astc.ErrOutOfMem, "out of memory"},
		{astc.ErrBadCPUFloat, "unsupported floating-point environment"},
		{astc.ErrBadParam, "bad parameter"},
		{astc.ErrBadBlockSize, "bad block size"},
		{astc.ErrBadProfile, "bad profile"},
		{astc.ErrBadQuality, "bad quality"},
		{astc.ErrBadSwizzle, "bad swizzle"},
		{astc.ErrBadFlags, "bad flags"},
		{astc.ErrBadContext, "bad context state"},
		{astc.ErrNotImplemented, "not implemented"},
		{astc.ErrBadDecodeMode, "bad decode mode"},
		{astc.ErrDTraceFailure, "diagnostic trace failure"},
	}

	for _, c := range cases {
		if got := astc.ErrorString(c.code); got != c.want {
			t.Fatalf("ErrorString(%d): got %q want %q", uint32(c.code), got, c.want)
		}
	}

	if got := astc.ErrorString(astc.ErrorCode(0xDEADBEEF)); got != "" {
		t.Fatalf("ErrorString(unknown): got %q want %q", got, "")
	}
}

func TestErrorCodeOf(t *testing.T) {
	if got := astc.ErrorCodeOf(nil); got != astc.Success {
		t.Fatalf("ErrorCodeOf(nil): got %v want %v", got, astc.Success)
	}

	if _, err := astc.ConfigInit(astc.ProfileLDR, 4, 4, 1, -1, 0); err == nil {
		t.Fatalf("ConfigInit: got nil error, want error")
	} else if got := astc.ErrorCodeOf(err); got != astc.ErrBadQuality {
		t.Fatalf("ErrorCodeOf(ConfigInit bad quality): got %v want %v", got, astc.ErrBadQuality)
	}

	if got := astc.ErrorCodeOf(errors.New("some other error")); got != astc.ErrBadParam {
		t.Fatalf("ErrorCodeOf(non-astc): got %v want %v", got, astc.ErrBadParam)
	}
}
