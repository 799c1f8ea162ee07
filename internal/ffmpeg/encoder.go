package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Settings is the output policy handed to the encoder. The binary belongs to
// the Runner.
type Settings struct {
	LogLevel    string
	VideoCodec  string
	PixelFormat string
	FrameRate   int
	FastStart   bool
}

// Invocation is everything one encode needs: the staged inputs in timeline
// order, the filter graph and where to write.
type Invocation struct {
	Images []string
	Audio  string
	Graph  string
	Output string
}

// Encoder turns an Invocation into one encoder run.
type Encoder struct {
	runner   Runner
	timing   Timing
	settings Settings
}

// NewEncoder returns an Encoder that uses runner for execution. The same
// timing must be used to build the graph passed in each Invocation.
func NewEncoder(runner Runner, timing Timing, settings Settings) *Encoder {
	if settings.VideoCodec == "" {
		settings.VideoCodec = "libx264"
	}
	if settings.PixelFormat == "" {
		settings.PixelFormat = "yuv420p"
	}
	if settings.FrameRate == 0 {
		settings.FrameRate = 30
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "error"
	}
	return &Encoder{runner: runner, timing: timing, settings: settings}
}

// Args builds the encoder argument list:
//
//	-hide_banner -nostdin -y -loglevel error
//	-loop 1 -t 12 -i img0 ... -loop 1 -t 11 -i img4
//	-i audio
//	-filter_complex <graph> -map [v] -map 5:a
//	-c:v libx264 -pix_fmt yuv420p -r 30 -shortest out.mp4
//
// Each image is a looped single frame bounded to its segment duration; the
// audio input is declared once, unlooped, and mapped by its input index.
func (e *Encoder) Args(inv Invocation) ([]string, error) {
	if len(inv.Images) != len(e.timing.Segments) {
		return nil, fmt.Errorf("have %d images for %d segments", len(inv.Images), len(e.timing.Segments))
	}
	if inv.Audio == "" || inv.Graph == "" || inv.Output == "" {
		return nil, errors.New("audio, graph and output are required")
	}

	args := make([]string, 0, 32+6*len(inv.Images))
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", e.settings.LogLevel)

	for i, img := range inv.Images {
		args = append(args,
			"-loop", "1",
			"-t", formatSeconds(e.timing.Segments[i]),
			"-i", img,
		)
	}
	audioIndex := len(inv.Images)
	args = append(args, "-i", inv.Audio)

	args = append(args,
		"-filter_complex", inv.Graph,
		"-map", "["+FinalLabel+"]",
		"-map", strconv.Itoa(audioIndex)+":a",
		"-c:v", e.settings.VideoCodec,
		"-pix_fmt", e.settings.PixelFormat,
		"-r", strconv.Itoa(e.settings.FrameRate),
		"-shortest",
	)
	if e.settings.FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, inv.Output), nil
}

// Encode runs the encoder exactly once. It fails with *EncodeError when the
// process exits non-zero or leaves no (or an empty) output file behind.
func (e *Encoder) Encode(ctx context.Context, inv Invocation) error {
	args, err := e.Args(inv)
	if err != nil {
		return err
	}

	if err := e.runner.Run(ctx, args); err != nil {
		return err
	}

	st, err := os.Stat(inv.Output)
	if err != nil || st.Size() == 0 {
		return &EncodeError{Missing: true, Output: inv.Output, Err: err}
	}
	return nil
}
