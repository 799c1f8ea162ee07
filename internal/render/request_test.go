package render

import (
	"strings"
	"testing"

	"slidecast/internal/pkg/errors"
)

func TestRequestValidate(t *testing.T) {
	if err := validRequest.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	bad := Request{Images: []string{"a"}, Audio: "b"}
	err := bad.Validate()
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := errors.GetFields(err)["field"]; got != "images" {
		t.Errorf("expected field images, got %v", got)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		unique string
		want   string
	}{
		{"plain", "clip", "1a2b3c4d", "clip-1a2b3c4d.mp4"},
		{"keeps extension", "clip.mp4", "1a2b3c4d", "clip-1a2b3c4d.mp4"},
		{"upper extension", "CLIP.MP4", "1a2b3c4d", "CLIP-1a2b3c4d.MP4"},
		{"strips directories", "a/b/c/final", "1a2b3c4d", "final-1a2b3c4d.mp4"},
		{"windows separators", `C:\tmp\final`, "1a2b3c4d", "final-1a2b3c4d.mp4"},
		{"unsafe characters", "my clip!", "1a2b3c4d", "my-clip-1a2b3c4d.mp4"},
		{"other extension kept in base", "clip.mov", "1a2b3c4d", "clip.mov-1a2b3c4d.mp4"},
		{"no suffix", "clip", "", "clip.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Request{Name: tt.in}).OutputName(tt.unique); got != tt.want {
				t.Errorf("OutputName(%q, %q) = %q, want %q", tt.in, tt.unique, got, tt.want)
			}
		})
	}
}

func TestOutputNameGenerated(t *testing.T) {
	for _, in := range []string{"", "   ", "../..", "!!!"} {
		got := (Request{Name: in}).OutputName("1a2b3c4d")
		if !strings.HasPrefix(got, "video-") || !strings.HasSuffix(got, ".mp4") || len(got) != len("video-")+32+len(".mp4") {
			t.Errorf("OutputName(%q) = %q, want generated video-<hex>.mp4", in, got)
		}
	}
}

func TestOutputNameSameNameDiffers(t *testing.T) {
	req := Request{Name: "promo"}
	a, b := req.OutputName("aaaa1111"), req.OutputName("bbbb2222")
	if a == b {
		t.Errorf("expected distinct names for distinct attempts, both %q", a)
	}
}
