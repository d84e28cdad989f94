package storage

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/sskr-service/interfaces"
)

// StorageBackendFactory creates storage backends from location URIs.
type StorageBackendFactory struct {
	log *slog.Logger
}

func NewStorageBackendFactory(logger *slog.Logger) *StorageBackendFactory {
	return &StorageBackendFactory{log: logger}
}

// StorageBackendFor creates a backend for one location.
//
// Supported schemes:
//   - file:///var/lib/sskr
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=us-east-1&endpoint=minio:9000&path_style=true
//   - ipfs://host:port/root?timeout=30s
//   - vault://host:port/mount/path?token=...&tls=false
//   - github://owner/repo/root?ref=main&token=... (read-only)
func (sf *StorageBackendFactory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	switch location.Scheme {
	case "file":
		return sf.createFileBackend(location)
	case "s3":
		return sf.createS3Backend(location)
	case "ipfs":
		return sf.createIPFSBackend(location)
	case "vault":
		return sf.createVaultBackend(location)
	case "github":
		return sf.createGitHubBackend(location)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiBackend creates a backend that fans out to every location that
// could be configured. Locations that fail to configure are logged and skipped.
func (sf *StorageBackendFactory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locations))

	for _, location := range locations {
		backend, err := sf.StorageBackendFor(location)
		if err != nil {
			sf.log.Warn("Failed to create storage backend",
				"err", err,
				slog.String("location", location.Scheme+"://"+location.Host+location.Path))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}
	if len(backends) == 1 {
		return backends[0], nil
	}

	return NewMultiStorageBackend(backends, sf.log), nil
}

// createFileBackend handles file:///absolute/path and file://./relative/path.
func (sf *StorageBackendFactory) createFileBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI", interfaces.ErrInvalidLocationURI)
	}

	sf.log.Debug("Creating file backend", slog.String("path", path))
	return NewFileBackend(path, sf.log)
}

func (sf *StorageBackendFactory) createS3Backend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	if location.Host == "" {
		return nil, fmt.Errorf("%w: missing bucket in s3 URI", interfaces.ErrInvalidLocationURI)
	}

	cfg := S3Config{
		Bucket:    location.Host,
		Prefix:    location.Path,
		Region:    location.GetParam("region"),
		Endpoint:  location.GetParam("endpoint"),
		PathStyle: location.GetParamBool("path_style"),
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if location.User != nil {
		cfg.AccessKey = location.User.Username()
		cfg.SecretKey, _ = location.User.Password()
		sf.log.Debug("Using embedded S3 credentials")
	}

	sf.log.Debug("Creating S3 backend", slog.String("bucket", cfg.Bucket), slog.String("region", cfg.Region))
	return NewS3Backend(cfg, sf.log)
}

func (sf *StorageBackendFactory) createIPFSBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	host, port, found := strings.Cut(location.Host, ":")
	if host == "" {
		return nil, fmt.Errorf("%w: missing host in ipfs URI", interfaces.ErrInvalidLocationURI)
	}
	if !found || port == "" {
		port = "5001"
	}

	timeout := 30 * time.Second
	if raw := location.GetParam("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ipfs timeout: %v", interfaces.ErrInvalidLocationURI, err)
		}
		timeout = parsed
	}

	sf.log.Debug("Creating IPFS backend", slog.String("host", host), slog.String("port", port))
	return NewIPFSBackend(host, port, location.Path, timeout, sf.log), nil
}

// createVaultBackend expects the first path segment to be the KV v2 mount.
func (sf *StorageBackendFactory) createVaultBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	mount, dataPath, _ := strings.Cut(strings.TrimPrefix(location.Path, "/"), "/")
	if location.Host == "" || mount == "" {
		return nil, fmt.Errorf("%w: vault URI must be vault://host:port/mount[/path]", interfaces.ErrInvalidLocationURI)
	}

	scheme := "https"
	if location.GetParam("tls") == "false" {
		scheme = "http"
	}

	sf.log.Debug("Creating Vault backend", slog.String("host", location.Host), slog.String("mount", mount))
	return NewVaultBackend(scheme+"://"+location.Host, mount, dataPath, location.GetParam("token"), sf.log)
}

// createGitHubBackend handles github://owner/repo[/root].
func (sf *StorageBackendFactory) createGitHubBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	owner := location.Host
	parts := strings.SplitN(strings.Trim(location.Path, "/"), "/", 2)
	if owner == "" || parts[0] == "" {
		return nil, fmt.Errorf("%w: github location needs owner and repository", interfaces.ErrInvalidLocationURI)
	}

	root := ""
	if len(parts) == 2 {
		root = parts[1]
	}
	return NewGitHubBackend(owner, parts[0], root, location.GetParam("ref"), location.GetParam("token"), sf.log), nil
}
