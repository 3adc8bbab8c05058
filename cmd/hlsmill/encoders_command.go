package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/hlsmill/internal/display"
	"github.com/backmassage/hlsmill/internal/encoder"
)

func newEncodersCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encoders",
		Short: "Detect usable encoders and print the candidate table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := &encoder.Catalog{
				FFmpegPath:    app.cfg.FFmpegBinary(),
				Timeout:       time.Duration(app.cfg.Encoding.DetectTimeoutSeconds) * time.Second,
				ForceSoftware: app.cfg.Encoding.ForceSoftware,
				Log:           app.log,
			}
			sel := catalog.Detect(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, display.EncoderTable(sel))
			fmt.Fprintf(out, "Selected: %s (%s) / %s (%s)\n",
				sel.VideoName, sel.VideoCodec, sel.AudioName, sel.AudioCodec)
			return nil
		},
	}
}
