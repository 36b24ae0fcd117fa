package scanner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedExtensions are the image formats the pipeline can decode.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".gif":  true,
}

// FindImageFiles lists the image files in folder, sorted by path. With
// recursive set it walks subdirectories too.
func FindImageFiles(folder string, recursive bool) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("folder does not exist: %s", folder)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", folder)
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isImageFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk folder: %w", err)
		}
	} else {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("failed to read folder: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				files = append(files, filepath.Join(folder, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	slog.Info("Found image files", "folder", folder, "count", len(files))
	return files, nil
}

func isImageFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}
