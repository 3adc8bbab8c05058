package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/hlsmill/internal/check"
)

func newCheckCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that ffmpeg and ffprobe are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return check.Run(cmd.Context(),
				app.cfg.FFmpegBinary(), app.cfg.FFprobeBinary(), app.log)
		},
	}
}
