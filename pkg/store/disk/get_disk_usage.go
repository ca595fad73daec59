package disk

import (
	"syscall"

	"shareit/pkg/log"
	"shareit/pkg/store"
)

// GetDiskUsage returns space information for the filesystem holding the storage directory.
func (s *Store) GetDiskUsage() (*store.DiskUsage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(s.storageDir, &stat); err != nil {
		log.Error().Err(err).Str("storage_dir", s.storageDir).Msg("Failed to stat storage filesystem")
		return nil, err
	}

	var bsize uint64
	if stat.Bsize > 0 {
		bsize = uint64(stat.Bsize) //nolint:gosec // checked above
	}

	total := stat.Blocks * bsize
	available := stat.Bavail * bsize
	used := total - stat.Bfree*bsize

	return &store.DiskUsage{
		SpaceUsed:      int64(used),      //nolint:gosec // disk sizes fit in int64
		SpaceAvailable: int64(available), //nolint:gosec // disk sizes fit in int64
		TotalSpace:     int64(total),     //nolint:gosec // disk sizes fit in int64
	}, nil
}
