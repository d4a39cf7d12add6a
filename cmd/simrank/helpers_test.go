package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func emptyZip() []byte {
	var buf bytes.Buffer
	_ = zip.NewWriter(&buf).Close()
	return buf.Bytes()
}

func buildDocx(t *testing.T, dir string, picture []byte) string {
	t.Helper()
	path := filepath.Join(dir, "doc.docx")
	writeZip(t, path,
		zipEntry{name: "word/document.xml", data: []byte("<w:document/>")},
		zipEntry{name: "word/media/image1.png", data: picture},
	)
	return path
}

type zipEntry struct {
	name string
	data []byte
}

func writeZip(t *testing.T, path string, entries ...zipEntry) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = f.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}
