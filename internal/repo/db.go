package repo

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"uunn/internal/model"
)

// defaultSQLiteDSN используется, если строка подключения не задана.
const defaultSQLiteDSN = "file:uunn.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Models: все модели, которые мигрирует сервер.
func Models() []any {
	return []any{
		&model.User{},
		&model.Group{},
		&model.Membership{},
		&model.Invite{},
		&model.InviteRedemption{},
		&model.Vault{},
	}
}

// zapWriter направляет вывод логгера gorm в zap.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...any) {
	w.log.Warnf(format, args...)
}

// NewGormLogger логирует медленные и упавшие запросы без значений параметров:
// в них бывают обёрнутые ключи и шифртексты хранилищ.
// nil: логирование SQL выключено.
func NewGormLogger(log *zap.SugaredLogger) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	return logger.New(zapWriter{log: log}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// InitDB открывает БД по DSN: postgres:// и postgresql://: PostgreSQL,
// всё остальное: SQLite (modernc.org/sqlite), и выполняет миграции.
func InitDB(dsn string, log *zap.SugaredLogger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: NewGormLogger(log)}

	var (
		db  *gorm.DB
		err error
	)
	if isPostgres(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		db, err = gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, cfg)
		if err == nil {
			// SQLite не любит параллельных писателей: один коннект сериализует транзакции
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
