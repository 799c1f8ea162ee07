package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"slidecast/internal/app"
	v1 "slidecast/internal/contracts/render/v1"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		images  []string
		audio   string
		name    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render five images and one audio track into a published video",
		Example: `  slidecast render \
    --image https://example.com/1.jpg --image https://example.com/2.jpg \
    --image https://example.com/3.jpg --image https://example.com/4.jpg \
    --image https://example.com/5.jpg --audio https://example.com/track.ogg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := app.NewLogger(cfg, "slidecast-cli")

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, timeout)
				defer cancel()
			}

			pipeline, err := app.NewPipeline(runCtx, cfg, log, nil)
			if err != nil {
				return err
			}

			req := v1.RenderRequest{Images: images, Audio: audio, Name: name}
			res, err := pipeline.Renderer.Render(runCtx, req.ToRequest())
			if err != nil {
				return err
			}
			return writeJSON(cmd, v1.FromResult(res))
		},
	}

	cmd.Flags().StringArrayVar(&images, "image", nil, "Image URL, repeated once per slide in order")
	cmd.Flags().StringVar(&audio, "audio", "", "Audio track URL")
	cmd.Flags().StringVar(&name, "name", "", "Output file name (default video-<random>.mp4)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the render after this long (0 disables)")

	return cmd
}
