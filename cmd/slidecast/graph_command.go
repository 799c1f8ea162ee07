package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slidecast/internal/ffmpeg"
	"slidecast/internal/render"
)

func newGraphCommand(ctx *commandContext) *cobra.Command {
	var showArgs bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the filter graph built from the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			timing := cfg.Timing()
			graph, err := ffmpeg.BuildGraph(render.ImageCount, timing)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, graph)
			fmt.Fprintf(out, "duration: %gs\n", timing.Total())
			if !showArgs {
				return nil
			}

			inv := ffmpeg.Invocation{
				Audio:  "audio" + cfg.Render.AudioExt,
				Graph:  graph,
				Output: "video.mp4",
			}
			for i := 0; i < render.ImageCount; i++ {
				inv.Images = append(inv.Images, fmt.Sprintf("img%d%s", i, cfg.Render.ImageExt))
			}
			enc := ffmpeg.NewEncoder(nil, timing, cfg.EncodeSettings())
			argv, err := enc.Args(inv)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cfg.Render.FFmpegBinary+" "+strings.Join(argv, " "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showArgs, "args", false, "Also print the full encoder command line")
	return cmd
}
