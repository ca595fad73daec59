package disk

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shareit/pkg/store"
)

// errReader fails after yielding some bytes, like a client dropping mid-upload.
type errReader struct {
	data []byte
	done bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, r.data), nil
}

type DiskStoreTestSuite struct {
	suite.Suite
	tempDir string
	store   *Store
}

func (s *DiskStoreTestSuite) SetupTest() {
	var err error
	s.tempDir, err = os.MkdirTemp("", "disk-store-test-*")
	s.Require().NoError(err)

	s.store = New(filepath.Join(s.tempDir, "uploads"))
	s.Require().NoError(s.store.Init())
}

func (s *DiskStoreTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// storedNames lists the final names in the storage directory, ignoring staging.
func (s *DiskStoreTestSuite) storedNames() []string {
	entries, err := os.ReadDir(s.store.Dir())
	s.Require().NoError(err)

	var names []string
	for _, entry := range entries {
		if entry.Name() == TempDirName {
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

func (s *DiskStoreTestSuite) stagingEntries() []os.DirEntry {
	entries, err := os.ReadDir(filepath.Join(s.store.Dir(), TempDirName))
	s.Require().NoError(err)
	return entries
}

func (s *DiskStoreTestSuite) TestInitCreatesDirectories() {
	info, err := os.Stat(s.store.Dir())
	s.Require().NoError(err)
	s.True(info.IsDir())

	info, err = os.Stat(filepath.Join(s.store.Dir(), TempDirName))
	s.Require().NoError(err)
	s.True(info.IsDir())

	// Idempotent on an existing tree.
	s.NoError(s.store.Init())
}

func (s *DiskStoreTestSuite) TestSaveRoundTrip() {
	content := []byte("0123456789")

	info, err := s.store.Save(bytes.NewReader(content), "a.txt")
	s.Require().NoError(err)
	s.True(strings.HasSuffix(info.Name, "-a.txt"))
	s.Equal("a.txt", info.OriginalName)
	s.Equal(int64(10), info.Size)
	s.False(info.CreatedAt.IsZero())

	path, err := s.store.Path(info.Name)
	s.Require().NoError(err)
	s.Equal(filepath.Join(s.store.Dir(), info.Name), path)

	stored, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal(content, stored)

	s.Empty(s.stagingEntries())
}

func (s *DiskStoreTestSuite) TestSaveEmptyFile() {
	info, err := s.store.Save(bytes.NewReader(nil), "empty.txt")
	s.Require().NoError(err)
	s.Equal(int64(0), info.Size)

	exists, err := s.store.Exists(info.Name)
	s.NoError(err)
	s.True(exists)
}

func (s *DiskStoreTestSuite) TestSaveSanitizesTraversal() {
	info, err := s.store.Save(strings.NewReader("x"), "../../escape.txt")
	s.Require().NoError(err)
	s.True(strings.HasSuffix(info.Name, "-escape.txt"))

	s.Equal([]string{info.Name}, s.storedNames())
	_, err = os.Stat(filepath.Join(s.tempDir, "escape.txt"))
	s.True(os.IsNotExist(err))
}

func (s *DiskStoreTestSuite) TestSaveDuplicateOriginalNames() {
	first, err := s.store.Save(strings.NewReader("one"), "dup.png")
	s.Require().NoError(err)
	second, err := s.store.Save(strings.NewReader("two"), "dup.png")
	s.Require().NoError(err)

	s.NotEqual(first.Name, second.Name)
	s.Len(s.storedNames(), 2)
}

func (s *DiskStoreTestSuite) TestSaveConcurrentSameName() {
	const workers = 16
	results := make(chan string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := s.store.Save(strings.NewReader("same"), "same.bin")
			if err == nil {
				results <- info.Name
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for name := range results {
		s.False(seen[name])
		seen[name] = true
	}
	s.Len(seen, workers)
	s.Len(s.storedNames(), workers)
}

func (s *DiskStoreTestSuite) TestSaveReaderErrorLeavesNothing() {
	_, err := s.store.Save(&errReader{data: []byte("partial")}, "broken.txt")
	s.Error(err)

	s.Empty(s.storedNames())
	s.Empty(s.stagingEntries())
}

func (s *DiskStoreTestSuite) TestSaveEnforcesMaxSize() {
	limited := New(s.store.Dir(), WithMaxSize(8))

	_, err := limited.Save(strings.NewReader("123456789"), "big.bin")
	var tooLarge store.FileTooLargeError
	s.Require().ErrorAs(err, &tooLarge)
	s.Equal(int64(8), tooLarge.Limit)
	s.Empty(s.storedNames())
	s.Empty(s.stagingEntries())

	info, err := limited.Save(strings.NewReader("12345678"), "fits.bin")
	s.Require().NoError(err)
	s.Equal(int64(8), info.Size)
}

func (s *DiskStoreTestSuite) TestMaxSizeNegativeMeansUnlimited() {
	s.Equal(int64(0), New(s.store.Dir(), WithMaxSize(-1)).MaxSize())
	s.Equal(int64(0), s.store.MaxSize())
}

func (s *DiskStoreTestSuite) TestSaveRejectsExistingName() {
	fixed := uuid.NewString() + "-fixed.txt"
	colliding := New(s.store.Dir(), WithNameGenerator(func(string) string { return fixed }))

	_, err := colliding.Save(strings.NewReader("first"), "fixed.txt")
	s.Require().NoError(err)

	_, err = colliding.Save(strings.NewReader("second"), "fixed.txt")
	var existsErr store.FileExistsError
	s.Require().ErrorAs(err, &existsErr)
	s.Equal(fixed, existsErr.Name)

	content, err := os.ReadFile(filepath.Join(s.store.Dir(), fixed))
	s.Require().NoError(err)
	s.Equal("first", string(content))
	s.Empty(s.stagingEntries())
}

func (s *DiskStoreTestSuite) TestSaveRejectsInvalidGeneratedName() {
	bad := New(s.store.Dir(), WithNameGenerator(func(string) string { return "../oops" }))

	_, err := bad.Save(strings.NewReader("x"), "x")
	var invalid store.InvalidNameError
	s.ErrorAs(err, &invalid)
	s.Empty(s.storedNames())
}

func (s *DiskStoreTestSuite) TestPathNotFound() {
	_, err := s.store.Path(uuid.NewString() + "-missing.txt")
	var notFound store.FileNotFoundError
	s.ErrorAs(err, &notFound)
}

func (s *DiskStoreTestSuite) TestPathInvalidNames() {
	for _, name := range []string{"", ".tmp", "..", "../etc/passwd", "plain.txt", uuid.NewString() + "-a/b"} {
		_, err := s.store.Path(name)
		var invalid store.InvalidNameError
		s.ErrorAs(err, &invalid, "name %q", name)
	}
}

func (s *DiskStoreTestSuite) TestPathIgnoresDirectories() {
	name := uuid.NewString() + "-folder"
	s.Require().NoError(os.Mkdir(filepath.Join(s.store.Dir(), name), dirPerm))

	_, err := s.store.Path(name)
	var notFound store.FileNotFoundError
	s.ErrorAs(err, &notFound)

	exists, err := s.store.Exists(name)
	s.NoError(err)
	s.False(exists)
}

func (s *DiskStoreTestSuite) TestExists() {
	info, err := s.store.Save(strings.NewReader("data"), "e.txt")
	s.Require().NoError(err)

	exists, err := s.store.Exists(info.Name)
	s.NoError(err)
	s.True(exists)

	exists, err = s.store.Exists(uuid.NewString() + "-e.txt")
	s.NoError(err)
	s.False(exists)

	_, err = s.store.Exists("bogus")
	s.Error(err)
}

func (s *DiskStoreTestSuite) TestGetFileInfo() {
	saved, err := s.store.Save(strings.NewReader("hello"), "hello world.txt")
	s.Require().NoError(err)

	info, err := s.store.GetFileInfo(saved.Name)
	s.Require().NoError(err)
	s.Equal(saved.Name, info.Name)
	s.Equal("hello world.txt", info.OriginalName)
	s.Equal(int64(5), info.Size)

	_, err = s.store.GetFileInfo(uuid.NewString() + "-nope.txt")
	var notFound store.FileNotFoundError
	s.ErrorAs(err, &notFound)
}

func (s *DiskStoreTestSuite) TestGetDiskUsage() {
	usage, err := s.store.GetDiskUsage()
	s.Require().NoError(err)
	s.Greater(usage.TotalSpace, int64(0))
	s.GreaterOrEqual(usage.TotalSpace, usage.SpaceAvailable)
	s.GreaterOrEqual(usage.SpaceUsed, int64(0))
}

func (s *DiskStoreTestSuite) TestStoredFileIsReadable() {
	info, err := s.store.Save(strings.NewReader("perm"), "perm.txt")
	s.Require().NoError(err)

	stat, err := os.Stat(filepath.Join(s.store.Dir(), info.Name))
	s.Require().NoError(err)
	s.Equal(os.FileMode(filePerm), stat.Mode().Perm())

	f, err := os.Open(filepath.Join(s.store.Dir(), info.Name))
	s.Require().NoError(err)
	defer f.Close()
	data, err := io.ReadAll(f)
	s.Require().NoError(err)
	s.Equal("perm", string(data))
}

func TestDiskStoreSuite(t *testing.T) {
	suite.Run(t, new(DiskStoreTestSuite))
}
