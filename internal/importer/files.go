package importer

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/library/scanner"
)

// listFiles enumerates all regular files under root, skipping directories
// and symlinks.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", root, err)
	}
	return files, nil
}

// extractArchives unpacks every recognized archive next to itself so that
// archived video and subtitle content becomes visible to classification.
func extractArchives(files []string, logger zerolog.Logger) {
	for _, file := range files {
		if !scanner.IsArchiveFile(file) {
			continue
		}
		logger.Debug().Str("archive", file).Msg("Extracting archive")
		var err error
		switch filepath.Ext(file) {
		case ".zip":
			err = extractZip(file, filepath.Dir(file))
		default:
			err = extractRar(file, filepath.Dir(file))
		}
		if err != nil {
			logger.Warn().Err(err).Str("archive", file).Msg("Failed to extract archive")
		}
	}
}

func extractZip(path, dest string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if err := writeZipEntry(entry, dest); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(entry *zip.File, dest string) error {
	// Flatten entry paths; nested archive layouts are not preserved.
	target := filepath.Join(dest, filepath.Base(entry.Name))
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip entry %s: %w", entry.Name, err)
	}
	defer src.Close()
	return writeFile(target, src)
}

func extractRar(path, dest string) error {
	reader, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}
	defer reader.Close()

	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir {
			continue
		}
		target := filepath.Join(dest, filepath.Base(header.Name))
		if err := writeFile(target, reader); err != nil {
			return err
		}
	}
}

func writeFile(target string, src io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to extract to %s: %w", target, err)
	}
	return nil
}

// classify splits files into video and subtitle sets. Everything else is
// ignored.
func classify(files []string) (videos, subtitles []string) {
	for _, file := range files {
		switch {
		case scanner.IsVideoFile(file):
			videos = append(videos, file)
		case scanner.IsSubtitleFile(file):
			subtitles = append(subtitles, file)
		}
	}
	return videos, subtitles
}

// link places source at target, removing any previous file there first.
// Hardlinks are preferred; filesystems that refuse them get a full copy.
func link(source, target string) error {
	if _, err := os.Lstat(target); err == nil {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to remove existing %s: %w", target, err)
		}
	}
	if err := os.Link(source, target); err == nil {
		return nil
	}
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer in.Close()
	return writeFile(target, in)
}
