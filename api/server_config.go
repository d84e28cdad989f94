package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig configures httpserver.Server.
type HTTPServerConfig struct {
	// ListenAddr serves the split/combine API and health endpoints.
	ListenAddr string

	// AdminListenAddr, when set, moves the recovery keeper's admin API to its
	// own listener. Otherwise it is mounted under /admin on ListenAddr.
	AdminListenAddr string

	// MetricsAddr serves /metrics. Empty disables the metrics listener.
	MetricsAddr string

	EnablePprof bool

	Log *slog.Logger

	// UnlockTimeout bounds how long the keeper waits for admins, 0 waits
	// until shutdown.
	UnlockTimeout time.Duration

	// DrainDuration is how long /drain keeps reporting not ready before
	// the drain is considered complete.
	DrainDuration            time.Duration
	GracefulShutdownDuration time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}
