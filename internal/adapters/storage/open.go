package storage

import (
	"fmt"
	"io"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/bolt"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Driver names accepted by Open.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Store is what every driver provides: the key-value port, a health check
// and a Close that releases the underlying file.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
	io.Closer
}

// Open returns the store for driver. path is ignored by the memory driver.
func Open(driver, path string) (Store, error) {
	var (
		s   Store
		err error
	)

	switch driver {
	case DriverBolt:
		s, err = bolt.Open(path)
	case DriverSQLite:
		s, err = sqlite.Open(path)
	case DriverMemory:
		s = memory.New("storage")
	default:
		err = fmt.Errorf("unknown storage driver %q", driver)
	}

	if err != nil {
		return nil, err
	}

	return s, nil
}
