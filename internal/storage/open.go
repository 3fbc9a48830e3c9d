package storage

import (
	"fmt"

	"go.uber.org/zap"

	"railway/internal/database"
)

const (
	DriverBolt = "bolt"
	DriverSQL  = "sql"
)

// Open returns the backend selected by driver.
func Open(driver, dsn, boltPath string, log *zap.Logger) (Backend, error) {
	switch driver {
	case DriverBolt:
		log.Info("opening bolt store", zap.String("path", boltPath))
		return OpenBolt(boltPath)
	case DriverSQL:
		db, err := database.Connect(dsn, log)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		return NewGormBackend(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
