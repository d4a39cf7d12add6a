package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// MediaPrefix is where Word stores embedded pictures inside a .docx.
const MediaPrefix = "word/media"

var ErrMediaNotFound = errors.New("media entry not found")

// Entry is one file extracted from a container.
type Entry struct {
	Name string
	Data []byte
}

// ExtractDocx returns every entry stored under word/media, in archive order.
func ExtractDocx(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer r.Close()

	entries := []Entry{}
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, MediaPrefix) || f.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s from %s: %w", f.Name, path, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: data})
	}
	return entries, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReplaceDocxMedia writes a copy of src to dst in which the entry called name
// holds data. All other entries are copied unchanged. src and dst may be the
// same file. Untouched entries are copied without recompression.
func ReplaceDocxMedia(src, dst, name string, data []byte) (err error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open docx %s: %w", src, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".simrank-*.docx")
	if err != nil {
		return fmt.Errorf("create temporary docx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := zip.NewWriter(tmp)
	replaced := false
	for _, f := range r.File {
		if f.Name != name {
			if err := w.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		header := f.FileHeader
		out, err := w.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("write header %s: %w", f.Name, err)
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
		replaced = true
	}
	if !replaced {
		return fmt.Errorf("%w: %s in %s", ErrMediaNotFound, name, src)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finish docx: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("move docx into place: %w", err)
	}
	return nil
}
