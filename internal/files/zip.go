package files

import (
	"archive/zip"
	"bytes"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// ZipEntry is one file destined for an in-memory template archive.
type ZipEntry struct {
	Filename string
	Content  []byte
}

// zipEntries builds a deflate-compressed archive in memory.
func zipEntries(entries []ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, entry := range entries {
		name := entry.Filename
		if name == "" {
			name = "file"
		}
		part, err := writer.Create(name)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding zip entry")
		}
		if _, err := part.Write(entry.Content); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing zip entry")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing zip archive")
	}
	return buf.Bytes(), nil
}
