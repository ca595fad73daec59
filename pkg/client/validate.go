package client

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// MaxFileSize is the largest file the client will submit.
const MaxFileSize int64 = 100 * 1024 * 1024

// ValidateSize rejects sizes above MaxFileSize with ErrFileTooLarge.
func ValidateSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %s exceeds the %s limit", ErrFileTooLarge,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(MaxFileSize)))
	}
	return nil
}
