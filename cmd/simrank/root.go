package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/simrank/internal/utils/logger"
)

const rootLongDesc string = `simrank ranks images by structural similarity (SSIM) to a reference.

Commands:
  simrank rank      Rank images, directories and .docx pictures against a reference
  simrank extract   Dump the pictures embedded in a .docx
  simrank replace   Swap one picture inside a .docx

rank reads its scorer, ranking, cache and report settings from the
environment (and an optional .env file), see internal/config.`

const rootShortDesc string = "simrank - SSIM image ranking"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "simrank",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyLogLevel(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("trace", false, "Enable trace logging")

	cmd.AddCommand(newRankCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newReplaceCmd())

	return cmd
}

func applyLogLevel(cmd *cobra.Command) error {
	trace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return fmt.Errorf("could not get trace flag: %w", err)
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}

	switch {
	case trace:
		return logger.SetLevel("trace")
	case debug:
		return logger.SetLevel("debug")
	}
	return nil
}
