package render

import (
	"path"
	"regexp"
	"strings"

	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/ids"
)

// ImageCount is the fixed number of images in a slideshow.
const ImageCount = 5

// Request is one render: five images in timeline order, one audio track and
// an optional output name.
type Request struct {
	Images []string `json:"images"`
	Audio  string   `json:"audio"`
	Name   string   `json:"name,omitempty"`
}

// Validate rejects any request that is not exactly five non-blank image refs
// and one non-blank audio ref.
func (r Request) Validate() error {
	if len(r.Images) != ImageCount {
		return errors.Validationf("expected %d images, got %d", ImageCount, len(r.Images)).
			WithField("field", "images")
	}
	for i, img := range r.Images {
		if strings.TrimSpace(img) == "" {
			return errors.Validationf("image %d is empty", i).
				WithField("field", "images").
				WithField("index", i)
		}
	}
	if strings.TrimSpace(r.Audio) == "" {
		return errors.ValidationField("audio", "audio is required")
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// OutputName returns the file name of the rendered video. A caller supplied
// name is reduced to a safe base name and suffixed with unique, so renders
// that ask for the same name never share an object key. Without a usable
// name the result is video-<hex>.mp4.
func (r Request) OutputName(unique string) string {
	name := strings.TrimSpace(r.Name)
	if name != "" {
		name = path.Base(strings.ReplaceAll(name, "\\", "/"))
		name = strings.Trim(unsafeName.ReplaceAllString(name, "-"), ".-")
	}
	if name == "" {
		return "video-" + ids.Hex() + ".mp4"
	}

	ext := ".mp4"
	if n := len(name) - len(ext); n > 0 && strings.EqualFold(name[n:], ext) {
		name, ext = name[:n], name[n:]
	}
	if unique != "" {
		name += "-" + unique
	}
	return name + ext
}

// Kind distinguishes staged images from the audio track.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// StagedAsset is one remote ref and where it is staged for this attempt.
type StagedAsset struct {
	Index int
	Ref   string
	Path  string
	Kind  Kind
}
