package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"pkghub/internal/api"
	"pkghub/internal/config"
)

const (
	probeTimeout       = 500 * time.Millisecond
	spawnReadyTimeout  = 3 * time.Second
	spawnPollInterval  = 100 * time.Millisecond
	spawnedLogFileMode = 0o600
)

// withClient runs fn against the configured API, spawning a private
// `pkghub srv` for the duration of the call when nothing answers there.
func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	client := api.NewClient(cfg.APIURL)

	probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	err := client.Ping(probeCtx)
	cancel()
	if err == nil {
		return fn(client)
	}

	spawned, err := spawnLocalServer(cfg)
	if err != nil {
		return err
	}
	defer spawned.stop()

	if err := spawned.awaitReady(client); err != nil {
		return err
	}
	return fn(client)
}

// spawnedServer is a `pkghub srv` child owned by one CLI invocation.
type spawnedServer struct {
	cmd     *exec.Cmd
	logFile *os.File
	apiURL  string
}

func spawnLocalServer(cfg *config.Config) (*spawnedServer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate pkghub binary: %w", err)
	}

	// Server output goes next to the database so a failed start can be
	// diagnosed after the CLI exits.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := os.OpenFile(cfg.DBPath+".srv.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, spawnedLogFileMode)
	if err != nil {
		return nil, fmt.Errorf("open server log: %w", err)
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = append(os.Environ(),
		"PKGHUB_DB="+cfg.DBPath,
		"PKGHUB_API_URL="+cfg.APIURL,
	)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("start pkghub srv: %w", err)
	}
	return &spawnedServer{cmd: cmd, logFile: logFile, apiURL: cfg.APIURL}, nil
}

func (s *spawnedServer) awaitReady(client *api.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), spawnReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(spawnPollInterval)
	defer ticker.Stop()
	for {
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*spawnPollInterval)
		err := client.Ping(pingCtx)
		pingCancel()
		switch {
		case err == nil:
			return nil
		case !isDialFailure(err):
			// Something else owns the port.
			return fmt.Errorf("%s is not a pkghub server: %w", s.apiURL, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("pkghub srv at %s not ready after %s; see %s", s.apiURL, spawnReadyTimeout, s.logFile.Name())
		case <-ticker.C:
		}
	}
}

func (s *spawnedServer) stop() {
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
	_ = s.logFile.Close()
}

func isDialFailure(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
