package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/marginalia-app/marginalia-server/internal/config"
	"github.com/marginalia-app/marginalia-server/internal/logger"
	"github.com/marginalia-app/marginalia-server/internal/storage"
)

// AdapterHandle wraps the storage adapter with shutdown capability.
type AdapterHandle struct {
	*storage.Adapter
}

// Shutdown implements do.Shutdownable.
func (h *AdapterHandle) Shutdown() error {
	return h.Close()
}

// ProvideStorageAdapter provides the durable key-value storage adapter.
func ProvideStorageAdapter(i do.Injector) (*AdapterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Storage.DataPath, "db")
	adapter, err := storage.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Storage initialized", "path", dbPath)

	return &AdapterHandle{Adapter: adapter}, nil
}
