package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultSmokeFileSize = 1024
	defaultSmokeParallel = 10
	defaultSmokeName     = "smoke.bin"
)

// SmokeConfig selects the load of a smoke run against a live server.
type SmokeConfig struct {
	FileSize int
	Parallel int
	// Name is the original file name every upload uses.
	Name string
}

func (cfg *SmokeConfig) normalize() {
	if cfg.FileSize <= 0 {
		cfg.FileSize = defaultSmokeFileSize
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = defaultSmokeParallel
	}
	if cfg.Name == "" {
		cfg.Name = defaultSmokeName
	}
}

// StepResult is the outcome of one smoke step.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// SmokeReport summarizes a smoke run.
type SmokeReport struct {
	Steps     []StepResult
	Uploads   int
	Downloads int
	Infos     int
	Bytes     int64
	Duration  time.Duration
}

// Smoke drives end-to-end checks: upload, fetch back, byte comparison,
// distinct links for identical names and 404 for unknown names.
type Smoke struct {
	client *Client
	cfg    SmokeConfig

	mu     sync.Mutex
	report SmokeReport
}

func NewSmoke(client *Client, cfg SmokeConfig) *Smoke {
	cfg.normalize()
	return &Smoke{client: client, cfg: cfg}
}

type smokeStep struct {
	name string
	run  func(context.Context) error
}

// Run executes every step and stops at the first failure. The report is
// returned in both cases.
func (s *Smoke) Run(ctx context.Context) (*SmokeReport, error) {
	steps := []smokeStep{
		{"Server reachable", s.ping},
		{"Single pass", func(ctx context.Context) error {
			_, err := s.pass(ctx)
			return err
		}},
		{fmt.Sprintf("%d parallel passes with the same name", s.cfg.Parallel), s.parallelSameName},
		{"Unknown name is not found", s.unknownName},
	}

	start := time.Now()
	var runErr error
	for _, step := range steps {
		stepStart := time.Now()
		err := step.run(ctx)

		s.mu.Lock()
		s.report.Steps = append(s.report.Steps, StepResult{Name: step.name, Duration: time.Since(stepStart), Err: err})
		s.mu.Unlock()

		if err != nil {
			runErr = fmt.Errorf("%s: %w", strings.ToLower(step.name), err)
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Duration = time.Since(start)
	report := s.report
	report.Steps = append([]StepResult(nil), s.report.Steps...)
	return &report, runErr
}

func (s *Smoke) record(apply func(*SmokeReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.report)
}

func (s *Smoke) ping(ctx context.Context) error {
	_, err := s.client.Ping(ctx)
	return err
}

// pass uploads random bytes, then checks the link, metadata and content.
func (s *Smoke) pass(ctx context.Context) (string, error) {
	data := make([]byte, s.cfg.FileSize)
	if _, err := rand.Read(data); err != nil {
		return "", fmt.Errorf("generate random data: %w", err)
	}

	result, err := s.client.UploadReader(ctx, s.cfg.Name, bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	s.record(func(r *SmokeReport) {
		r.Uploads++
		r.Bytes += int64(len(data))
	})

	if !strings.HasSuffix(StoredName(result.URL), "-"+s.cfg.Name) {
		return "", fmt.Errorf("link %s does not end with the original name", result.URL)
	}

	info, err := s.client.FileInfo(ctx, result.URL)
	if err != nil {
		return "", fmt.Errorf("fetch info failed: %w", err)
	}
	s.record(func(r *SmokeReport) { r.Infos++ })
	if info.Size != int64(len(data)) {
		return "", fmt.Errorf("info size mismatch: expected %d, got %d", len(data), info.Size)
	}

	var body bytes.Buffer
	if _, err := s.client.Get(ctx, result.URL, &body); err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	s.record(func(r *SmokeReport) {
		r.Downloads++
		r.Bytes += int64(body.Len())
	})
	if !bytes.Equal(body.Bytes(), data) {
		return "", errors.New("downloaded data mismatch")
	}

	return result.URL, nil
}

func (s *Smoke) parallelSameName(ctx context.Context) error {
	links := make([]string, s.cfg.Parallel)
	err := runParallel(s.cfg.Parallel, func(i int) error {
		link, err := s.pass(ctx)
		links[i] = link
		return err
	})
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(links))
	for _, link := range links {
		if seen[link] {
			return fmt.Errorf("duplicate link %s", link)
		}
		seen[link] = true
	}
	return nil
}

func (s *Smoke) unknownName(ctx context.Context) error {
	var sink bytes.Buffer
	_, err := s.client.Get(ctx, uuid.NewString()+"-"+s.cfg.Name, &sink)
	if err == nil {
		return errors.New("unknown name was served")
	}
	if !IsNotFound(err) {
		return fmt.Errorf("expected 404: %w", err)
	}
	return nil
}

func runParallel(count int, function func(int) error) error {
	var waitGroup sync.WaitGroup
	errCh := make(chan error, count)

	for index := 0; index < count; index++ {
		waitGroup.Add(1)
		go func(idx int) {
			defer waitGroup.Done()
			if err := function(idx); err != nil {
				errCh <- err
			}
		}(index)
	}

	waitGroup.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}

	return nil
}
