package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

type Asset struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// ArchiveAssets streams the assets into w as a zip archive, one entry per asset.
func ArchiveAssets(w io.Writer, assets []Asset) error {
	zw := zip.NewWriter(w)
	for _, asset := range assets {
		header := &zip.FileHeader{
			Name:     asset.Filename,
			Method:   zip.Deflate,
			Modified: asset.Modified,
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("zip: create %s: %w", asset.Filename, err)
		}
		if _, err := entry.Write(asset.Data); err != nil {
			_ = zw.Close()
			return fmt.Errorf("zip: write %s: %w", asset.Filename, err)
		}
	}
	return zw.Close()
}
