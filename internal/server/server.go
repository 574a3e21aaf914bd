package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pkghub/internal/artifact"
	"pkghub/internal/auth"
	"pkghub/internal/store"
)

const (
	allowRemoteEnvKey     = "PKGHUB_ALLOW_REMOTE"
	readHeaderTimeout     = 5 * time.Second
	readTimeout           = 5 * time.Minute
	writeTimeout          = 10 * time.Minute
	idleTimeout           = 60 * time.Second
	archiveConcurrency    = 2
	defaultMaxUploadBytes = 100 << 20 // 100 MiB
	defaultMultipartMem   = 8 << 20   // 8 MiB
)

// Backend is the storage surface the handlers use.
type Backend interface {
	store.UserStore
	store.ContentStore
	store.PackageStore
	store.ArtifactStore
	StoreInfo(ctx context.Context) (store.Info, error)
	Ping(ctx context.Context) error
}

// UploadLimits bounds multipart request bodies.
type UploadLimits struct {
	MaxUploadBytes     int64
	MultipartMaxMemory int64
}

// Options configures a Server.
type Options struct {
	Addr     string
	Store    Backend
	Archiver *artifact.Archiver
	Hasher   auth.Hasher
	Uploads  UploadLimits
	Version  string
	Logger   *slog.Logger
}

// Server wraps HTTP handlers for the pkghub API.
type Server struct {
	addr           string
	store          Backend
	artifacts      *artifact.Service
	archiver       *artifact.Archiver
	hasher         auth.Hasher
	uploads        UploadLimits
	version        string
	logger         *slog.Logger
	archiveLimiter chan struct{}
}

// New creates a new server instance.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	archiver := opts.Archiver
	if archiver == nil {
		var err error
		archiver, err = artifact.NewArchiver(artifact.DefaultArchiveConfig())
		if err != nil {
			return nil, err
		}
	}
	hasher := opts.Hasher
	if hasher.Cost == 0 {
		hasher = auth.DefaultHasher()
	}
	uploads := opts.Uploads
	if uploads.MaxUploadBytes <= 0 {
		uploads.MaxUploadBytes = defaultMaxUploadBytes
	}
	if uploads.MultipartMaxMemory <= 0 {
		uploads.MultipartMaxMemory = defaultMultipartMem
	}

	return &Server{
		addr:           opts.Addr,
		store:          opts.Store,
		artifacts:      artifact.NewService(opts.Store),
		archiver:       archiver,
		hasher:         hasher,
		uploads:        uploads,
		version:        opts.Version,
		logger:         logger,
		archiveLimiter: make(chan struct{}, archiveConcurrency),
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log().Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log().Info("shutting down server", "addr", s.addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
