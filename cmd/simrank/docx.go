package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/simrank/internal/media"
)

func newExtractCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "extract <docx> --out <dir>",
		Short: "Write every picture embedded in a .docx to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := media.ExtractDocx(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}

			for _, entry := range entries {
				path, err := extractPath(outDir, entry.Name)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
				}
				if err := os.WriteFile(path, entry.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			log.Info().Str("docx", args[0]).Int("entries", len(entries)).Msg("extracted media")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// extractPath maps a media entry onto outDir, keeping its path below
// word/media so entries with the same base name do not collide.
func extractPath(outDir, name string) (string, error) {
	rel := strings.TrimLeft(strings.TrimPrefix(name, media.MediaPrefix), "/")
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("refusing to extract %q outside %s", name, outDir)
	}
	return filepath.Join(outDir, filepath.FromSlash(rel)), nil
}

func newReplaceCmd() *cobra.Command {
	var (
		entry string
		with  string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "replace <docx> --entry <name> --with <image> [--out <docx>]",
		Short: "Replace one picture inside a .docx",
		Long: `Replace the bytes of one media entry (for example word/media/image1.png)
with the contents of another file. Without --out the document is rewritten in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(with)
			if err != nil {
				return fmt.Errorf("read replacement: %w", err)
			}
			if out == "" {
				out = args[0]
			}

			if err := media.ReplaceDocxMedia(args[0], out, entry, data); err != nil {
				return err
			}
			log.Info().Str("entry", entry).Str("out", out).Msg("replaced media")
			return nil
		},
	}

	cmd.Flags().StringVar(&entry, "entry", "", "Media entry to replace")
	cmd.Flags().StringVar(&with, "with", "", "File holding the new image")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output document (defaults to the input)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("with")

	return cmd
}
