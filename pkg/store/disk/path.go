package disk

import (
	"shareit/pkg/log"
)

// Path returns the filesystem path of the stored file name.
func (s *Store) Path(name string) (string, error) {
	filePath, _, err := s.lookup(name)
	if err != nil {
		log.Debug().Err(err).Str("name", name).Msg("Stored file lookup failed")
		return "", err
	}
	return filePath, nil
}
