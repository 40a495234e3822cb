package tool

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/filemigrate/types"
)

// FilePayload opens a local file on every transfer attempt.
type FilePayload string

func (p FilePayload) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesPayload serves in-memory content.
type BytesPayload []byte

func (p BytesPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p)), nil
}

// BuildTransferItem reads file information from the local filesystem.
// The file name doubles as the item id; callers mixing folders assign unique ids.
func BuildTransferItem(filePath string) (types.TransferItem, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return types.TransferItem{}, fmt.Errorf("failed to stat file: %v", err)
	}
	if fileInfo.IsDir() {
		return types.TransferItem{}, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	fileName := filepath.Base(filePath)
	return types.TransferItem{
		ID:       fileName,
		Name:     fileName,
		MimeType: DetectMimeType(filePath),
		Size:     fileInfo.Size(),
		Payload:  FilePayload(filePath),
	}, nil
}

// ExpandPaths walks directories and returns every regular file below them; plain files pass through.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %v", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk folder %s: %v", p, err)
		}
	}
	return files, nil
}

// DetectMimeType uses the extension first and falls back to content sniffing.
func DetectMimeType(filePath string) string {
	if fileType := mime.TypeByExtension(filepath.Ext(filePath)); fileType != "" {
		return fileType
	}
	mt, err := mimetype.DetectFile(filePath)
	if err != nil {
		DefaultLogger.Debugf("Failed to sniff mime type of %s: %v", filePath, err)
		return "application/octet-stream"
	}
	return mt.String()
}
