package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/simrank/internal/ranking"
)

var ErrUnsupportedSource = errors.New("unsupported candidate source")

// Collect loads candidates from paths. A path may be an image file, a
// directory (its image files are read in name order, without recursion) or a
// .docx document (its embedded pictures become candidates named
// "<path>#<entry>").
func Collect(paths []string) ([]ranking.Candidate, error) {
	candidates := []ranking.Candidate{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		var found []ranking.Candidate
		switch {
		case info.IsDir():
			found, err = collectDir(p)
		case !info.Mode().IsRegular():
			err = fmt.Errorf("%w: %s", ErrUnsupportedSource, p)
		case strings.EqualFold(filepath.Ext(p), ".docx"):
			found, err = collectDocx(p)
		default:
			var c ranking.Candidate
			c, err = collectFile(p)
			found = []ranking.Candidate{c}
		}
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}
	return candidates, nil
}

func collectFile(path string) (ranking.Candidate, error) {
	img, err := Open(path)
	if err != nil {
		return ranking.Candidate{}, err
	}
	return ranking.Candidate{ID: path, Image: img}, nil
}

func collectDir(dir string) ([]ranking.Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var candidates []ranking.Candidate
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		c, err := collectFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	log.Debug().Str("dir", dir).Int("images", len(candidates)).Msg("collected directory")
	return candidates, nil
}

func collectDocx(path string) ([]ranking.Candidate, error) {
	entries, err := ExtractDocx(path)
	if err != nil {
		return nil, err
	}

	var candidates []ranking.Candidate
	for _, entry := range entries {
		if !IsImageFile(entry.Name) {
			log.Debug().Str("docx", path).Str("entry", entry.Name).Msg("skipping non-raster media")
			continue
		}
		id := path + "#" + entry.Name
		img, err := Decode(id, entry.Data)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, ranking.Candidate{ID: id, Image: img})
	}
	return candidates, nil
}
