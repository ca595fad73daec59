package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shareit/pkg/server"
	"shareit/pkg/store/disk"
)

// ClientTestSuite runs the client against a real server on a temp directory.
type ClientTestSuite struct {
	suite.Suite
	httpServer *httptest.Server
	client     *Client
	workDir    string
}

func (s *ClientTestSuite) SetupTest() {
	root := s.T().TempDir()
	s.workDir = filepath.Join(root, "work")
	s.Require().NoError(os.MkdirAll(s.workDir, 0o750))

	storeImpl := disk.New(filepath.Join(root, "uploads"))
	s.Require().NoError(storeImpl.Init())

	srv := server.NewShareServer(server.Config{MaxUploadSize: MaxFileSize}, "client-test", storeImpl)
	s.httpServer = httptest.NewServer(srv.Handler())
	s.client = New(s.httpServer.URL, WithRetry(1, time.Millisecond, 5*time.Millisecond))
}

func (s *ClientTestSuite) TearDownTest() {
	s.httpServer.Close()
}

func (s *ClientTestSuite) writeFile(name string, content []byte) string {
	path := filepath.Join(s.workDir, name)
	s.Require().NoError(os.WriteFile(path, content, 0o600))
	return path
}

func (s *ClientTestSuite) TestNewTrimsBaseURL() {
	s.Equal("http://example.com", New("http://example.com/").BaseURL())
}

func (s *ClientTestSuite) TestUploadAndGet() {
	content := []byte("0123456789")
	path := s.writeFile("a.txt", content)

	var mu sync.Mutex
	var reported []int
	result, err := s.client.Upload(context.Background(), path, func(pct int) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, pct)
	})
	s.Require().NoError(err)

	s.Equal("a.txt", result.Name)
	s.Equal(int64(10), result.Size)
	s.True(strings.HasPrefix(result.URL, s.httpServer.URL+"/uploads/"))
	s.True(strings.HasSuffix(result.URL, "-a.txt"))

	s.Require().NotEmpty(reported)
	s.Equal(100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		s.Greater(reported[i], reported[i-1])
	}

	var body bytes.Buffer
	n, err := s.client.Get(context.Background(), result.URL, &body)
	s.Require().NoError(err)
	s.Equal(int64(10), n)
	s.Equal(content, body.Bytes())
}

func (s *ClientTestSuite) TestUploadEmptyFileReportsComplete() {
	path := s.writeFile("empty.txt", nil)

	var reported []int
	result, err := s.client.Upload(context.Background(), path, func(pct int) {
		reported = append(reported, pct)
	})
	s.Require().NoError(err)
	s.Equal(int64(0), result.Size)
	s.Equal([]int{100}, reported)
}

func (s *ClientTestSuite) TestUploadNameWithSpaces() {
	path := s.writeFile("my file.txt", []byte("spaced"))

	result, err := s.client.Upload(context.Background(), path, nil)
	s.Require().NoError(err)
	s.True(strings.HasSuffix(result.URL, "-my%20file.txt"))

	var body bytes.Buffer
	_, err = s.client.Get(context.Background(), StoredName(result.URL), &body)
	s.Require().NoError(err)
	s.Equal("spaced", body.String())
}

func (s *ClientTestSuite) TestUploadSameNameTwice() {
	path := s.writeFile("dup.png", []byte("png"))

	first, err := s.client.Upload(context.Background(), path, nil)
	s.Require().NoError(err)
	second, err := s.client.Upload(context.Background(), path, nil)
	s.Require().NoError(err)

	s.NotEqual(first.URL, second.URL)
}

func (s *ClientTestSuite) TestUploadMissingFile() {
	_, err := s.client.Upload(context.Background(), filepath.Join(s.workDir, "nope.txt"), nil)
	s.Require().Error(err)
	s.True(errors.Is(err, os.ErrNotExist))
}

func (s *ClientTestSuite) TestUploadDirectory() {
	_, err := s.client.Upload(context.Background(), s.workDir, nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "not a regular file")
}

func (s *ClientTestSuite) TestUploadReaderTooLargeNeverSubmitted() {
	var hits int
	counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer counting.Close()

	_, err := New(counting.URL).UploadReader(context.Background(), "big.bin", strings.NewReader(""), MaxFileSize+1, nil)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrFileTooLarge))
	s.Zero(hits)
}

func (s *ClientTestSuite) TestUploadServerErrorMessage() {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to store file"}`))
	}))
	defer failing.Close()

	_, err := New(failing.URL).UploadReader(context.Background(), "a.txt", strings.NewReader("abc"), 3, nil)
	s.Require().Error(err)

	var serverErr *ServerError
	s.Require().True(errors.As(err, &serverErr))
	s.Equal(http.StatusInternalServerError, serverErr.Status)
	s.Equal("Failed to store file", serverErr.Message)
}

func (s *ClientTestSuite) TestUploadServerPlainTextError() {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer failing.Close()

	_, err := New(failing.URL).UploadReader(context.Background(), "a.txt", strings.NewReader("abc"), 3, nil)

	var serverErr *ServerError
	s.Require().True(errors.As(err, &serverErr))
	s.Equal("bad gateway", serverErr.Message)
}

func (s *ClientTestSuite) TestUploadMissingURL() {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	_, err := New(empty.URL).UploadReader(context.Background(), "a.txt", strings.NewReader("abc"), 3, nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "missing url")
}

func (s *ClientTestSuite) TestUploadIsNotRetried() {
	var mu sync.Mutex
	hits := 0
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer flaky.Close()

	_, err := New(flaky.URL).UploadReader(context.Background(), "a.txt", strings.NewReader("abc"), 3, nil)
	s.Require().Error(err)
	s.Equal(1, hits)
}

func (s *ClientTestSuite) TestUploadTransportError() {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	_, err := New(closed.URL).UploadReader(context.Background(), "a.txt", strings.NewReader("abc"), 3, nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "upload a.txt")
}

func (s *ClientTestSuite) TestGetUnknownNameIsNotFound() {
	var body bytes.Buffer
	_, err := s.client.Get(context.Background(), "00000000-0000-0000-0000-000000000000-x.txt", &body)
	s.Require().Error(err)
	s.True(IsNotFound(err))

	var serverErr *ServerError
	s.Require().True(errors.As(err, &serverErr))
	s.Equal("File not found", serverErr.Message)
}

func (s *ClientTestSuite) TestGetRetriesConnectionErrors() {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	c := New(closed.URL, WithRetry(2, time.Millisecond, 2*time.Millisecond))
	_, err := c.Ping(context.Background())
	s.Require().Error(err)
	s.False(IsNotFound(err))
}

func (s *ClientTestSuite) TestGetDoesNotRetryServerReplies() {
	hits := 0
	var mu sync.Mutex
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	_, err := New(failing.URL).Ping(context.Background())
	s.Require().Error(err)
	s.Equal(1, hits)
}

func (s *ClientTestSuite) TestPing() {
	text, err := s.client.Ping(context.Background())
	s.Require().NoError(err)
	s.Equal(server.WelcomeMessage, text)
}

func (s *ClientTestSuite) TestStatus() {
	info, err := s.client.Status(context.Background())
	s.Require().NoError(err)
	s.Equal("client-test", info.Version)
}

func (s *ClientTestSuite) TestFileInfo() {
	path := s.writeFile("notes.md", []byte("# notes"))
	result, err := s.client.Upload(context.Background(), path, nil)
	s.Require().NoError(err)

	byLink, err := s.client.FileInfo(context.Background(), result.URL)
	s.Require().NoError(err)
	s.Equal("notes.md", byLink.OriginalName)
	s.Equal(int64(7), byLink.Size)

	byName, err := s.client.FileInfo(context.Background(), StoredName(result.URL))
	s.Require().NoError(err)
	s.Equal(byLink.Name, byName.Name)
}

func (s *ClientTestSuite) TestLinkForAndStoredName() {
	c := New("http://files.example/")
	link := c.LinkFor("abc-my file.txt")
	s.Equal("http://files.example/uploads/abc-my%20file.txt", link)
	s.Equal("abc-my file.txt", StoredName(link))
}

func (s *ClientTestSuite) TestSmoke() {
	report, err := NewSmoke(s.client, SmokeConfig{FileSize: 512, Parallel: 4, Name: "same name.bin"}).Run(context.Background())
	s.Require().NoError(err)

	s.Len(report.Steps, 4)
	for _, step := range report.Steps {
		s.NoError(step.Err, step.Name)
	}
	s.Equal(5, report.Uploads)
	s.Equal(5, report.Downloads)
	s.Equal(5, report.Infos)
	s.Equal(int64(5*2*512), report.Bytes)
}

func (s *ClientTestSuite) TestSmokeStopsAtFirstFailure() {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	c := New(closed.URL, WithRetry(0, time.Millisecond, time.Millisecond))
	report, err := NewSmoke(c, SmokeConfig{}).Run(context.Background())
	s.Require().Error(err)
	s.Len(report.Steps, 1)
	s.Error(report.Steps[0].Err)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
