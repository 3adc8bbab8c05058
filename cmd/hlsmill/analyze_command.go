package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/hlsmill/internal/display"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/probe"
)

func newAnalyzeCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze INPUT",
		Short: "Probe a media file and print its streams and planned ladder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober := &probe.Prober{
				FFprobePath: app.cfg.FFprobeBinary(),
				Timeout:     time.Duration(app.cfg.Pipeline.ProbeTimeoutSeconds) * time.Second,
				Log:         app.log,
			}
			desc, err := prober.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Container: %s, size: %s\n",
				orUnknown(desc.Container), display.FormatBytes(desc.FileSize))
			fmt.Fprintln(out, display.StreamTable(desc))

			if desc.Video == nil {
				fmt.Fprintln(out, "No video stream; a conversion would produce an audio-only package.")
				return nil
			}

			v := desc.Video
			profiles := ladder.CreateAdaptiveProfiles(v.Width, v.Height, v.BitrateKbps)
			fmt.Fprintln(out, "\nPlanned ladder:")
			fmt.Fprintln(out, display.LadderTable(profiles, v.Duration))
			return nil
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
