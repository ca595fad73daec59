package store

import (
	"fmt"
	"io"
	"time"
)

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// DiskUsage represents space information for the filesystem holding the storage directory.
type DiskUsage struct {
	SpaceUsed      int64 `json:"space_used"`      // Bytes used
	SpaceAvailable int64 `json:"space_available"` // Bytes available
	TotalSpace     int64 `json:"total_space"`     // Total bytes
}

// Store defines the interface for storing shared files in a flat namespace.
type Store interface {
	// Save streams reader into a new file named after originalName and
	// returns its metadata. The file only becomes visible once complete.
	Save(reader io.Reader, originalName string) (*FileInfo, error)

	// Path returns the filesystem path of a stored file.
	// Returns an error if the file doesn't exist or name is invalid.
	Path(name string) (string, error)

	// GetFileInfo retrieves metadata about a stored file.
	GetFileInfo(name string) (*FileInfo, error)

	// Exists checks if a file with the given name exists in storage.
	Exists(name string) (bool, error)

	// ValidateName checks if name has the shape of a generated stored name.
	ValidateName(name string) bool

	// GetDiskUsage returns space information for the storage filesystem.
	GetDiskUsage() (*DiskUsage, error)
}

// FileExistsError is returned when a generated name is already taken.
type FileExistsError struct {
	Name string
}

func (e FileExistsError) Error() string {
	return "file already exists"
}

// FileNotFoundError is returned when trying to access a file that doesn't exist.
type FileNotFoundError struct {
	Name string
}

func (e FileNotFoundError) Error() string {
	return "file not found"
}

// InvalidNameError is returned when a name is not a generated stored name.
type InvalidNameError struct {
	Name string
}

func (e InvalidNameError) Error() string {
	return "invalid file name"
}

// FileTooLargeError is returned when an upload exceeds the configured limit.
type FileTooLargeError struct {
	Limit int64
}

func (e FileTooLargeError) Error() string {
	return fmt.Sprintf("file exceeds limit of %d bytes", e.Limit)
}
