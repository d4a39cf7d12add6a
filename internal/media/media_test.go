package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func encode(t *testing.T, img image.Image, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

type zipEntry struct {
	name string
	data []byte
}

func writeDocx(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		out, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = out.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func sampleDocx(t *testing.T) (string, []byte, []byte) {
	t.Helper()
	png := encode(t, solid(12, 8, color.White), imaging.PNG)
	jpeg := encode(t, solid(6, 6, color.Black), imaging.JPEG)

	path := filepath.Join(t.TempDir(), "report.docx")
	writeDocx(t, path, []zipEntry{
		{name: "[Content_Types].xml", data: []byte("<Types/>")},
		{name: "word/document.xml", data: []byte("<w:document/>")},
		{name: "word/media/image1.png", data: png},
		{name: "word/media/image2.jpeg", data: jpeg},
		{name: "word/media/image3.emf", data: []byte("not a raster")},
	})
	return path, png, jpeg
}

func TestExtractDocx(t *testing.T) {
	path, png, jpeg := sampleDocx(t)

	entries, err := ExtractDocx(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "word/media/image1.png", entries[0].Name)
	assert.Equal(t, png, entries[0].Data)
	assert.Equal(t, "word/media/image2.jpeg", entries[1].Name)
	assert.Equal(t, jpeg, entries[1].Data)
	assert.Equal(t, "word/media/image3.emf", entries[2].Name)
}

func TestExtractDocxWithoutMedia(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.docx")
	writeDocx(t, path, []zipEntry{{name: "word/document.xml", data: []byte("<w:document/>")}})

	entries, err := ExtractDocx(path)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = ExtractDocx(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
}

func TestReplaceDocxMedia(t *testing.T) {
	path, png, _ := sampleDocx(t)
	replacement := encode(t, solid(3, 3, color.Gray{Y: 128}), imaging.PNG)
	out := filepath.Join(t.TempDir(), "patched.docx")

	require.NoError(t, ReplaceDocxMedia(path, out, "word/media/image2.jpeg", replacement))

	entries, err := ExtractDocx(out)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, png, entries[0].Data)
	assert.Equal(t, replacement, entries[1].Data)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"[Content_Types].xml",
		"word/document.xml",
		"word/media/image1.png",
		"word/media/image2.jpeg",
		"word/media/image3.emf",
	}, names)
}

func TestReplaceDocxMediaInPlace(t *testing.T) {
	path, _, _ := sampleDocx(t)
	replacement := []byte("patched")

	require.NoError(t, ReplaceDocxMedia(path, path, "word/media/image3.emf", replacement))

	entries, err := ExtractDocx(path)
	require.NoError(t, err)
	assert.Equal(t, replacement, entries[2].Data)
}

func TestReplaceDocxMediaUnknownEntry(t *testing.T) {
	path, _, _ := sampleDocx(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "patched.docx")

	err := ReplaceDocxMedia(path, out, "word/media/image9.png", []byte("x"))
	require.ErrorIs(t, err, ErrMediaNotFound)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	leftovers, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDecodeError(t *testing.T) {
	_, err := Decode("junk.png", []byte("definitely not an image"))
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "junk.png", decodeErr.Name)
	assert.Contains(t, err.Error(), "junk.png")
}

func TestSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.jpg", "out.bmp", "out.tiff", "out.gif"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, solid(9, 5, color.White)))

			img, err := Open(path)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 9, 5), img.Bounds())
		})
	}

	require.Error(t, Save(filepath.Join(dir, "out.xyz"), solid(1, 1, color.White)))

	_, err := Open(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	var decodeErr *DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a.PNG"))
	assert.True(t, IsImageFile("dir/b.webp"))
	assert.False(t, IsImageFile("c.emf"))
	assert.False(t, IsImageFile("noext"))
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "b.png"), solid(4, 4, color.Black)))
	require.NoError(t, Save(filepath.Join(dir, "a.png"), solid(5, 5, color.White)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))
	require.NoError(t, Save(filepath.Join(dir, "nested", "c.png"), solid(2, 2, color.White)))

	single := filepath.Join(t.TempDir(), "single.jpg")
	require.NoError(t, Save(single, solid(7, 3, color.White)))

	docx, _, _ := sampleDocx(t)

	candidates, err := Collect([]string{single, dir, docx})
	require.NoError(t, err)

	var ids []string
	for _, c := range candidates {
		ids = append(ids, c.ID)
		assert.NotNil(t, c.Image)
	}
	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		docx + "#word/media/image1.png",
		docx + "#word/media/image2.jpeg",
	}, ids)
	assert.Equal(t, image.Rect(0, 0, 12, 8), candidates[3].Image.Bounds())
}

func TestCollectFailures(t *testing.T) {
	candidates, err := Collect(nil)
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)

	_, err = Collect([]string{filepath.Join(t.TempDir(), "missing.png")})
	require.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("garbage"), 0o600))
	_, err = Collect([]string{broken})
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, broken, decodeErr.Name)
}

func rawEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	raw := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.OpenRaw()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		raw[f.Name+"@"+methodName(f.Method)] = data
	}
	return raw
}

func methodName(method uint16) string {
	if method == zip.Store {
		return "store"
	}
	return "deflate"
}

func TestReplaceDocxMediaKeepsUntouchedEntriesRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	stored, err := w.CreateHeader(&zip.FileHeader{Name: "word/media/image1.png", Method: zip.Store})
	require.NoError(t, err)
	_, err = stored.Write(encode(t, solid(5, 5, color.White), imaging.PNG))
	require.NoError(t, err)
	deflated, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = deflated.Write(bytes.Repeat([]byte("<w:p/>"), 200))
	require.NoError(t, err)
	target, err := w.Create("word/media/image2.png")
	require.NoError(t, err)
	_, err = target.Write([]byte("old"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	out := filepath.Join(t.TempDir(), "patched.docx")
	require.NoError(t, ReplaceDocxMedia(path, out, "word/media/image2.png", []byte("new")))

	before, after := rawEntries(t, path), rawEntries(t, out)
	for _, key := range []string{"word/media/image1.png@store", "word/document.xml@deflate"} {
		require.Contains(t, after, key)
		assert.Equal(t, before[key], after[key], key)
	}

	entries, err := ExtractDocx(out)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []byte("new"), entries[1].Data)
}
