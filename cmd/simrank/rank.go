package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/simrank/internal/config"
	"github.com/tensorplex-labs/simrank/internal/media"
	"github.com/tensorplex-labs/simrank/internal/ranking"
	"github.com/tensorplex-labs/simrank/internal/report"
	"github.com/tensorplex-labs/simrank/internal/scorecache"
	"github.com/tensorplex-labs/simrank/internal/scoring"
	"github.com/tensorplex-labs/simrank/internal/utils/logger"
	"github.com/tensorplex-labs/simrank/internal/utils/redis"
)

type rankCommander struct {
	cfg *config.AppConfig

	reference string
	top       bool
	json      bool
	compress  bool
	export    string
	workers   int
}

const rankLongDesc string = `Rank candidate images by SSIM similarity to a reference image.

Sources may be image files, directories (their images are read in name order,
without recursion) or .docx documents (every embedded picture is a candidate,
named <path>#<entry>).

By default a bar chart is printed. Use --json for a machine readable report,
--top to print only the best candidate and --export to save the best match.

Example:
  simrank rank --reference ref.png shots/
  simrank rank --reference ref.png a.jpg b.jpg report.docx --top
  simrank rank --reference ref.png shots/ --json --compress > ranking.json.zst`

const rankShortDesc string = "Rank images against a reference"

func newRankCmd() *cobra.Command {
	cmder := &rankCommander{}

	cmd := &cobra.Command{
		Use:   "rank --reference <image> <source>...",
		Short: rankShortDesc,
		Long:  rankLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg

			if !cmd.Flags().Changed("workers") {
				cmder.workers = cfg.Workers
			}
			if !cmd.Flags().Changed("json") {
				cmder.json = cfg.Format == config.ReportFormatJSON
			}
			if !cmd.Flags().Changed("compress") {
				cmder.compress = cfg.Compress
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().StringVarP(&cmder.reference, "reference", "r", "", "Reference image")
	cmd.Flags().BoolVarP(&cmder.top, "top", "t", false, "Print only the identifier of the best match")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Write a JSON report instead of a chart")
	cmd.Flags().BoolVar(&cmder.compress, "compress", false, "zstd compress the JSON report")
	cmd.Flags().StringVarP(&cmder.export, "export", "e", "", "Save the best matching image to this path")
	cmd.Flags().IntVarP(&cmder.workers, "workers", "w", 0, "Candidates scored concurrently (0 = GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func (c *rankCommander) run(ctx context.Context, out io.Writer, sources []string) error {
	cfg := c.cfg

	params, err := cfg.Params()
	if err != nil {
		return err
	}
	scorer, closeScorer, err := newScorer(cfg, params)
	if err != nil {
		return err
	}
	defer closeScorer()

	ref, err := media.Open(c.reference)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	candidates, err := media.Collect(sources)
	if err != nil {
		return err
	}
	log.Debug().Int("candidates", len(candidates)).Msg("collected candidates")

	startTime := time.Now()
	engine := ranking.NewEngine(scorer, ranking.WithWorkers(c.workers), ranking.WithLogger(logger.L()))
	result, err := engine.Rank(ctx, ref, candidates)
	if err != nil {
		return err
	}
	logger.Sugar().Infow("ranking complete",
		"reference", c.reference,
		"candidates", len(result),
		"elapsed", time.Since(startTime),
	)

	if c.export != "" {
		if err := c.exportBest(result, candidates); err != nil {
			return err
		}
	}

	switch {
	case c.top:
		best, ok := result.Top()
		if !ok {
			return ranking.ErrEmptyCandidates
		}
		_, err = fmt.Fprintln(out, best.ID)
		return err
	case c.json:
		return report.WriteJSON(out, report.New(c.reference, params, result), c.compress)
	default:
		return report.PlotRankingTerminal(out, result, "Similarity to "+c.reference)
	}
}

func (c *rankCommander) exportBest(result ranking.RankedResult, candidates []ranking.Candidate) error {
	best, ok := result.Top()
	if !ok {
		return ranking.ErrEmptyCandidates
	}
	for _, cand := range candidates {
		if cand.ID != best.ID {
			continue
		}
		if err := media.Save(c.export, cand.Image); err != nil {
			return err
		}
		log.Info().Str("id", best.ID).Str("path", c.export).Msg("exported best match")
		return nil
	}
	return fmt.Errorf("best match %q not among candidates", best.ID)
}

// newScorer builds the SSIM scorer, wrapped in the configured score cache.
// The returned func releases the cache backend.
func newScorer(cfg *config.AppConfig, params scoring.Params) (ranking.Scorer, func(), error) {
	base, err := scoring.NewScorer(scoring.WithParams(params))
	if err != nil {
		return nil, nil, err
	}

	var store scorecache.Store
	release := func() {}
	switch cfg.Backend {
	case config.CacheBackendNone:
		return base, release, nil
	case config.CacheBackendMemory:
		store = scorecache.NewMemory()
	case config.CacheBackendRedis:
		r, err := redis.NewRedis(&cfg.RedisEnvConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = r
		release = r.Close
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}

	cached := scorecache.New(base, store, params,
		scorecache.WithTTL(cfg.TTL),
		scorecache.WithTimeout(cfg.Timeout),
		scorecache.WithLogger(logger.L()),
	)
	return cached, func() {
		hits, misses := cached.Stats()
		log.Debug().Str("backend", cfg.Backend).Int64("hits", hits).Int64("misses", misses).Msg("score cache stats")
		release()
	}, nil
}
