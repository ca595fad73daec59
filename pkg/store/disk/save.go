package disk

import (
	"io"
	"os"

	"shareit/pkg/log"
	"shareit/pkg/naming"
	"shareit/pkg/store"
)

// Save streams reader into the staging directory and renames the result to a
// freshly generated name. A failed or truncated copy never reaches the final name.
func (s *Store) Save(reader io.Reader, originalName string) (*store.FileInfo, error) {
	name := s.generate(originalName)
	targetPath := s.getFilePath(name)
	if targetPath == "" {
		log.Error().Str("name", name).Msg("Invalid name generated")
		return nil, store.InvalidNameError{Name: name}
	}

	log.Debug().Str("original_name", originalName).Str("name", name).Msg("Processing file upload")

	tempFile, written, err := s.writeTempFile(reader)
	if err != nil {
		return nil, err
	}
	tempPath := tempFile.Name()
	committed := false
	defer func() {
		if !committed {
			s.removeTempFile(tempPath)
		}
	}()

	if err := tempFile.Close(); err != nil {
		log.Error().Err(err).Str("temp_file", tempPath).Msg("Failed to close temporary file")
		return nil, err
	}

	if _, err := os.Lstat(targetPath); err == nil {
		log.Error().Str("name", name).Msg("Generated name already exists")
		return nil, store.FileExistsError{Name: name}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		log.Error().Err(err).Str("temp_file", tempPath).Str("target_path", targetPath).Msg("Failed to move file into place")
		return nil, err
	}
	committed = true

	info, err := os.Stat(targetPath)
	if err != nil {
		return nil, err
	}

	log.Info().Str("name", name).Int64("size", written).Msg("File stored")
	return &store.FileInfo{
		Name:         name,
		OriginalName: naming.Original(name),
		Size:         written,
		CreatedAt:    info.ModTime(),
	}, nil
}

// writeTempFile copies reader into a new staging file, enforcing the size
// limit and flushing to disk. On error the staging file is already removed.
func (s *Store) writeTempFile(reader io.Reader) (*os.File, int64, error) {
	tempFile, err := os.CreateTemp(s.tempDir, "upload-*.tmp")
	if err != nil {
		log.Error().Err(err).Str("temp_dir", s.tempDir).Msg("Failed to create temporary file")
		return nil, 0, err
	}

	fail := func(err error) (*os.File, int64, error) {
		if closeErr := tempFile.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("temp_file", tempFile.Name()).Msg("Failed to close temporary file")
		}
		s.removeTempFile(tempFile.Name())
		return nil, 0, err
	}

	src := reader
	limit := s.MaxSize()
	if limit > 0 {
		src = io.LimitReader(reader, limit+1)
	}

	written, err := io.Copy(tempFile, src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to receive file content")
		return fail(err)
	}
	if limit > 0 && written > limit {
		log.Warn().Int64("limit", limit).Msg("Upload exceeds size limit")
		return fail(store.FileTooLargeError{Limit: limit})
	}

	if err := tempFile.Chmod(filePerm); err != nil {
		log.Error().Err(err).Msg("Failed to set file permissions")
		return fail(err)
	}
	if err := tempFile.Sync(); err != nil {
		log.Error().Err(err).Msg("Failed to flush file to disk")
		return fail(err)
	}

	return tempFile, written, nil
}

func (s *Store) removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("temp_file", path).Msg("Failed to remove temporary file")
	}
}
