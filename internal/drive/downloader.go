package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

// fileSource is the part of Service the downloader needs.
type fileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	ExportSpreadsheet(ctx context.Context, fileID string, w io.Writer) error
}

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader wraps Service to download files from a specific folder.
type Downloader struct {
	source fileSource
}

// NewDownloader creates a new Downloader.
func NewDownloader(s *Service) *Downloader {
	return &Downloader{source: s}
}

// DownloadFolder downloads every CSV, XLSX and native Google Sheets file of the folder
// into DownloadDir and returns the local paths. Native spreadsheets are exported as XLSX
// under their title, so "purchases" becomes purchases.xlsx.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]string, error) {
	log := logger.Component("drive")

	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		name, fetch := d.plan(f)
		if fetch == nil {
			log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("skipping non-tabular file")
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, name)
		if err := writeFile(localPath, func(w io.Writer) error { return fetch(ctx, f.ID, w) }); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		log.Info().Str("file", f.Name).Str("path", localPath).Msg("file downloaded")
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}

// plan picks the local name and fetch method for f, or a nil fetch to skip it.
func (d *Downloader) plan(f *File) (string, func(context.Context, string, io.Writer) error) {
	if f.MimeType == spreadsheetMimeType {
		return filepath.Base(f.Name) + ".xlsx", d.source.ExportSpreadsheet
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".csv", ".xlsx":
		return filepath.Base(f.Name), d.source.DownloadFile
	default:
		return "", nil
	}
}

func writeFile(path string, fill func(w io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", path, err)
	}
	if err := fill(out); err != nil {
		out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}
