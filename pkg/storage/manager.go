package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Config selects and configures the disks.
type Config struct {
	Default   string
	LocalRoot string
	LocalURL  string
	S3        S3Config
}

// FromConfig reads STORAGE_* and S3_* keys.
func FromConfig() Config {
	return Config{
		Default:   config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		},
	}
}

// Manager holds the named disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// New always boots the local disk; the s3 disk only when a bucket is
// configured. Selecting s3 as default without a bucket is an error.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.Default == "" {
		cfg.Default = "local"
	}
	m := &Manager{
		disks:       map[string]Disk{"local": NewLocal(cfg.LocalRoot, cfg.LocalURL)},
		defaultDisk: cfg.Default,
	}

	if cfg.S3.Bucket != "" {
		d, err := NewS3(ctx, cfg.S3)
		if err != nil {
			if cfg.Default == "s3" {
				return nil, err
			}
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}

	if _, ok := m.disks[cfg.Default]; !ok {
		return nil, fmt.Errorf("storage: default disk %q is not configured", cfg.Default)
	}
	return m, nil
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	d, ok := m.disks[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk.
func (m *Manager) Default() Disk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disks[m.defaultDisk]
}

// Register plugs in a custom Disk at boot time.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}
