// Package report renders ranking results for people and for other programs.
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"github.com/tensorplex-labs/simrank/internal/ranking"
	"github.com/tensorplex-labs/simrank/internal/scoring"
)

// zstdMagic is the frame header every zstd stream starts with.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Settings records the scorer parameters a report was produced with.
type Settings struct {
	Resolution    int        `json:"resolution"`
	WindowSize    int        `json:"window_size"`
	K1            float64    `json:"k1"`
	K2            float64    `json:"k2"`
	DataRange     float64    `json:"data_range"`
	LumaWeights   [3]float64 `json:"luma_weights"`
	Interpolation string     `json:"interpolation"`
}

type Report struct {
	Reference  string               `json:"reference"`
	Settings   Settings             `json:"settings"`
	Candidates int                  `json:"candidates"`
	Best       *ranking.Match       `json:"best,omitempty"`
	Matches    ranking.RankedResult `json:"matches"`
}

func New(reference string, params scoring.Params, result ranking.RankedResult) Report {
	matches := make(ranking.RankedResult, len(result))
	copy(matches, result)

	r := Report{
		Reference: reference,
		Settings: Settings{
			Resolution:    params.Resolution,
			WindowSize:    params.WindowSize,
			K1:            params.K1,
			K2:            params.K2,
			DataRange:     params.DataRange,
			LumaWeights:   [3]float64{params.Luma.R, params.Luma.G, params.Luma.B},
			Interpolation: params.Interpolation,
		},
		Candidates: len(matches),
		Matches:    matches,
	}
	if top, ok := matches.Top(); ok {
		r.Best = &top
	}
	return r
}

// WriteJSON encodes report to w, zstd compressed when compress is set.
func WriteJSON(w io.Writer, report Report, compress bool) error {
	data, err := sonic.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if !compress {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd: failed to create writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("zstd: failed to compress report: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zstd: failed to flush report: %w", err)
	}
	return nil
}

// ReadJSON decodes a report written by WriteJSON, compressed or not.
func ReadJSON(r io.Reader) (Report, error) {
	var report Report

	data, err := io.ReadAll(r)
	if err != nil {
		return report, fmt.Errorf("read report: %w", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return report, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer zr.Close()

		out, err := io.ReadAll(zr)
		if err != nil {
			return report, fmt.Errorf("zstd: failed to decompress report: %w", err)
		}
		data = out
	}

	if err := sonic.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}
