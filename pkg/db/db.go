package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	constant "liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

func GetInstance(dialector gorm.Dialector) *DB {
	var logger = constant.GetLogger()
	once.Do(func() {
		conn, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger()})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

		instance = &DB{Conn: conn}

		if dialector.Name() == "sqlite" {
			if err := instance.Conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				log.Fatal("Failed to enable sqlite foreign key support", err)
			}
		}

		if err := instance.Migrate(); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		logger.Info("Database migration completed")

		if dialector.Name() == "sqlite" {
			if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
				log.Fatal("Failed to set sqlite journal mode", err)
			}
		}
	})
	return instance
}

// Migrate creates or updates the cameras, locations and sensors tables.
func (d *DB) Migrate() error {
	return d.Conn.AutoMigrate(&models.Camera{}, &models.Location{}, &models.Sensor{})
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(constant.EnvKeyIOTDbPath); !found {
		dbPath = "cameras.db"
	}
	return UseSqliteFileDialector(dbPath)
}

func UseSqliteFileDialector(dbPath string) gorm.Dialector {
	return sqlite.Open(withForeignKeys(dbPath))
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open(withForeignKeys("file::memory:?cache=shared"))
}

func UsePostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// DialectorFor maps IOT_DB_TYPE to a dialector: "file", "memory" or "postgres".
// path is only used by "file" and dsn only by "postgres".
func DialectorFor(dbType string, path string, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case "file":
		if path == "" {
			return UseSqliteDialector(), nil
		}
		return UseSqliteFileDialector(path), nil
	case "memory":
		return UseMemorySqliteDialector(), nil
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("%s is required for postgres", constant.EnvKeyIOTDbDSN)
		}
		return UsePostgresDialector(dsn), nil
	default:
		return nil, fmt.Errorf("unknown %s: %q", constant.EnvKeyIOTDBType, dbType)
	}
}
