package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"golang.org/x/time/rate"
)

const (
	downloadAttempts = 3
	downloadTimeout  = 2 * time.Minute
)

var (
	// ErrLocalAudioDisabled is returned when no public URL is configured.
	ErrLocalAudioDisabled = errors.New("local audio server disabled")

	// ErrDownloadTooLarge is returned when a download exceeds the configured size.
	ErrDownloadTooLarge = errors.New("download exceeds maximum size")
)

// LocalAudioConfig configures the local audio server.
type LocalAudioConfig struct {
	// Dir is where downloaded files are kept.
	Dir string

	// ListenAddr is the address the file server binds to.
	ListenAddr string

	// PublicURL is the base URL the audio node reaches the file server at.
	// The server is disabled when it is empty.
	PublicURL string

	// MaxSize caps a single download in bytes; zero means no cap.
	MaxSize int64
}

// downloadError carries the HTTP status of a failed download.
type downloadError struct {
	status int
}

func (e *downloadError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// retryable reports whether another attempt might succeed.
func (e *downloadError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= http.StatusInternalServerError
}

// LocalAudioServer downloads audio files the audio node cannot fetch itself
// and serves them back to it over HTTP.
type LocalAudioServer struct {
	config     LocalAudioConfig
	publicURL  *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	server     *http.Server
}

// NewLocalAudioServer creates a LocalAudioServer. The directory is created
// when the server is enabled.
func NewLocalAudioServer(config LocalAudioConfig) (*LocalAudioServer, error) {
	s := &LocalAudioServer{
		config:     config,
		httpClient: &http.Client{Timeout: downloadTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}

	if config.PublicURL == "" {
		return s, nil
	}

	publicURL, err := url.Parse(strings.TrimSuffix(config.PublicURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse public URL: %w", err)
	}
	if publicURL.Scheme != "http" && publicURL.Scheme != "https" {
		return nil, fmt.Errorf("public URL must be http or https: %q", config.PublicURL)
	}
	s.publicURL = publicURL

	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local audio directory: %w", err)
	}

	s.server = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           http.StripPrefix(strings.TrimSuffix(publicURL.Path, "/"), s.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Enabled reports whether a public URL is configured for the store.
func (s *LocalAudioServer) Enabled() bool {
	return s.publicURL != nil
}

// Handler serves stored files. Directory listings are not exposed.
func (s *LocalAudioServer) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.config.Dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if !validStoredName(name) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// Start serves files until ctx is cancelled. It returns once the listener is bound.
func (s *LocalAudioServer) Start(ctx context.Context) error {
	if !s.Enabled() {
		slog.Info("local audio server disabled, no public URL configured")
		return nil
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shut down local audio server", "error", err)
		}
	}()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("local audio server exited", "error", err)
		}
	}()

	slog.Info(
		"local audio server listening",
		"addr", listener.Addr().String(),
		"public_url", s.publicURL.String(),
	)

	return nil
}

// Download fetches sourceURL into the store and returns the stored file name.
// Rate limited and server side failures are retried.
func (s *LocalAudioServer) Download(ctx context.Context, sourceURL, fileName string) (string, error) {
	if !s.Enabled() {
		return "", ErrLocalAudioDisabled
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(s.config.Dir, storedName)

	var err error
	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		if err = s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		var size int64
		size, err = s.download(ctx, sourceURL, path)
		if err == nil {
			slog.Info(
				"downloaded audio file",
				"file", fileName,
				"stored_as", storedName,
				"size", humanize.Bytes(uint64(size)),
			)
			return storedName, nil
		}

		_ = os.Remove(path)

		var statusErr *downloadError
		if !errors.As(err, &statusErr) || !statusErr.retryable() {
			break
		}

		slog.Warn(
			"download failed, retrying",
			"file", fileName,
			"attempt", attempt,
			"error", err,
		)
	}

	return "", fmt.Errorf("failed to download %s: %w", fileName, err)
}

func (s *LocalAudioServer) download(ctx context.Context, sourceURL, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, &downloadError{status: resp.StatusCode}
	}

	if s.config.MaxSize > 0 && resp.ContentLength > s.config.MaxSize {
		return 0, fmt.Errorf(
			"%w: %s",
			ErrDownloadTooLarge,
			humanize.Bytes(uint64(resp.ContentLength)),
		)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	var body io.Reader = resp.Body
	if s.config.MaxSize > 0 {
		body = io.LimitReader(resp.Body, s.config.MaxSize+1)
	}

	written, err := io.Copy(file, body)
	if err != nil {
		return 0, err
	}
	if s.config.MaxSize > 0 && written > s.config.MaxSize {
		return 0, ErrDownloadTooLarge
	}

	return written, file.Sync()
}

// URL returns the address the audio node should load a stored file from.
func (s *LocalAudioServer) URL(storedName string) string {
	if s.publicURL == nil {
		return ""
	}
	return s.publicURL.JoinPath(storedName).String()
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *LocalAudioServer) Remove(storedName string) error {
	if !validStoredName(storedName) {
		return fmt.Errorf("invalid stored file name %q", storedName)
	}

	err := os.Remove(filepath.Join(s.config.Dir, storedName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", storedName, err)
	}
	return nil
}

// Purge deletes every file the store downloaded, returning how many were
// removed. Files left over from a previous run belong to queues that no longer
// exist. Anything else in the directory is left alone.
func (s *LocalAudioServer) Purge() (int, error) {
	if !s.Enabled() {
		return 0, nil
	}

	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read local audio directory: %w", err)
	}

	var errs []error
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isStoredAudio(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.Dir, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

// validStoredName rejects names that would escape the store directory.
func validStoredName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name &&
		!strings.ContainsAny(name, `/\`)
}

// isStoredAudio reports whether name has the shape Download gives stored
// files: a UUID followed by a supported audio extension.
func isStoredAudio(name string) bool {
	ext := filepath.Ext(name)
	if !slices.Contains(ports.SupportedAudioExtensions, ext) {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(name, ext))
	return err == nil
}

// Ensure LocalAudioServer implements ports.LocalAudioStore.
var _ ports.LocalAudioStore = (*LocalAudioServer)(nil)
