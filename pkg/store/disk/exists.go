package disk

import (
	"errors"

	"shareit/pkg/store"
)

// Exists checks if a stored file with the given name exists.
func (s *Store) Exists(name string) (bool, error) {
	_, _, err := s.lookup(name)
	if err == nil {
		return true, nil
	}

	var notFoundErr store.FileNotFoundError
	if errors.As(err, &notFoundErr) {
		return false, nil
	}
	return false, err
}
