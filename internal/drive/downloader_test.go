package drive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	files    []*File
	content  map[string]string
	exported []string
	failID   string
}

func (f *fakeSource) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeSource) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	if fileID == f.failID {
		return errors.New("quota exceeded")
	}
	_, err := io.WriteString(w, f.content[fileID])
	return err
}

func (f *fakeSource) ExportSpreadsheet(ctx context.Context, fileID string, w io.Writer) error {
	f.exported = append(f.exported, fileID)
	_, err := io.WriteString(w, "xlsx:"+fileID)
	return err
}

func TestDownloadFolder(t *testing.T) {
	src := &fakeSource{
		files: []*File{
			{ID: "1", Name: "purchases_2025-01.csv", MimeType: "text/csv"},
			{ID: "2", Name: "sales.XLSX", MimeType: xlsxMimeType},
			{ID: "3", Name: "production", MimeType: spreadsheetMimeType},
			{ID: "4", Name: "notes.pdf", MimeType: "application/pdf"},
			{ID: "5", Name: "archive", MimeType: folderMimeType},
		},
		content: map[string]string{"1": "date,code\n", "2": "xlsx-bytes"},
	}
	d := &Downloader{source: src}
	dir := filepath.Join(t.TempDir(), "exports")

	paths, err := d.DownloadFolder(context.Background(), DownloadOptions{FolderID: "folder", DownloadDir: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "purchases_2025-01.csv"),
		filepath.Join(dir, "sales.XLSX"),
		filepath.Join(dir, "production.xlsx"),
	}, paths)
	assert.Equal(t, []string{"3"}, src.exported)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "date,code\n", string(data))
}

func TestDownloadFolder_Errors(t *testing.T) {
	d := &Downloader{source: &fakeSource{}}
	_, err := d.DownloadFolder(context.Background(), DownloadOptions{})
	assert.ErrorContains(t, err, "download dir is required")

	dir := t.TempDir()
	d = &Downloader{source: &fakeSource{
		files:  []*File{{ID: "1", Name: "sales.csv"}},
		failID: "1",
	}}
	_, err = d.DownloadFolder(context.Background(), DownloadOptions{DownloadDir: dir})
	assert.ErrorContains(t, err, "quota exceeded")
	assert.NoFileExists(t, filepath.Join(dir, "sales.csv"), "partial downloads are removed")
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `Bob\'s exports`, escapeQuery("Bob's exports"))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}
