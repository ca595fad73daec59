package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"shareit/pkg/log"
	"shareit/pkg/server"
	"shareit/pkg/store/disk"
)

const (
	defaultPort      = "5000"
	defaultMaxUpload = "100MiB"
)

//go:embed VERSION
var Version string

type options struct {
	storageDir   string
	port         string
	publicURL    string
	maxUpload    string
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
	logLevel     string
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	opts := &options{}
	fs.StringVar(&opts.storageDir, "storage", "uploads", "Storage directory path")
	fs.StringVar(&opts.port, "port", envOr("PORT", defaultPort), "Server port")
	fs.StringVar(&opts.publicURL, "public-url", "", "Base URL used in share links (default: derived from each request)")
	fs.StringVar(&opts.maxUpload, "max-upload", defaultMaxUpload, "Largest accepted upload, e.g. 100MiB or 2GB; 0 disables the limit")
	fs.DurationVar(&opts.readTimeout, "read-timeout", 0, "Maximum duration for reading a whole request, 0 for none")
	fs.DurationVar(&opts.writeTimeout, "write-timeout", 0, "Maximum duration for writing a response, 0 for none")
	fs.DurationVar(&opts.idleTimeout, "idle-timeout", 2*time.Minute, "Keep-alive idle timeout")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// config turns parsed flags into server settings.
func (opts *options) config() (server.Config, error) {
	maxUpload, err := humanize.ParseBytes(opts.maxUpload)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid -max-upload %q: %w", opts.maxUpload, err)
	}

	return server.Config{
		PublicURL:     strings.TrimRight(opts.publicURL, "/"),
		MaxUploadSize: int64(maxUpload),
		ReadTimeout:   opts.readTimeout,
		WriteTimeout:  opts.writeTimeout,
		IdleTimeout:   opts.idleTimeout,
	}, nil
}

func main() {
	// Initialize logger first
	_ = log.Logger

	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if err := log.SetLevel(opts.logLevel); err != nil {
		log.Fatal().Err(err).Msg("Invalid log level")
	}

	cfg, err := opts.config()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	diskStore := disk.New(opts.storageDir, disk.WithMaxSize(cfg.MaxUploadSize))
	if err := diskStore.Init(); err != nil {
		log.Fatal().Err(err).Str("storage_dir", opts.storageDir).Msg("Failed to create storage directory")
	}

	srv := server.NewShareServer(cfg, strings.TrimSpace(Version), diskStore)
	if err := srv.Start(":" + opts.port); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}
