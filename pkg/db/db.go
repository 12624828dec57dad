package db

import (
	"log"
	"os"
	"strings"
	"sync"

	constant "auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
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
		conn, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

		instance = &DB{Conn: conn}

		err = instance.Conn.AutoMigrate(
			&models.Device{},
			&models.Heartbeat{},
			&models.Command{},
			&models.DescentCheck{},
			&models.Dive{},
			&models.EventLog{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		logger.Info("Database migration completed")

		if dialector.Name() == "sqlite" {
			if err := instance.Conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				log.Fatal("Failed to enable sqlite foreign key support", err)
			}

			if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
				log.Fatal("Failed to set sqlite journal mode", err)
			}
		}
	})
	return instance
}

// SetPoolSize bounds the underlying sql.DB connection pool (DB_POOL_SIZE).
func (d *DB) SetPoolSize(n int) {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		log.Fatal("Failed to access sql.DB for pool sizing:", err)
	}
	sqlDB.SetMaxOpenConns(n)
	sqlDB.SetMaxIdleConns(n)
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(constant.EnvKeyTritonDbPath); !found {
		dbPath = "triton.db"
	}
	return sqlite.Open(dbPath)
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}

// UsePostgresDialector connects via DATABASE_URL, both postgres:// URLs and
// key=value DSNs are accepted by the driver.
func UsePostgresDialector(databaseURL string) gorm.Dialector {
	return postgres.Open(strings.TrimSpace(databaseURL))
}
