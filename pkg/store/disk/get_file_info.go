package disk

import (
	"shareit/pkg/log"
	"shareit/pkg/naming"
	"shareit/pkg/store"
)

// GetFileInfo retrieves metadata about a stored file.
func (s *Store) GetFileInfo(name string) (*store.FileInfo, error) {
	_, info, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("name", name).Int64("size", info.Size()).Msg("File info retrieved")
	return &store.FileInfo{
		Name:         name,
		OriginalName: naming.Original(name),
		Size:         info.Size(),
		CreatedAt:    info.ModTime(),
	}, nil
}
