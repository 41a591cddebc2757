package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	m "dexpilot/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Storage struct {
	db  *gorm.DB
	rds *redis.Client
	lg  zerolog.Logger
}

func NewStorage(mc *MysqlConfig, rc *RedisConfig, opts ...gorm.Option) (*Storage, error) {

	dsn := stgDsn(mc)
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Use a compatible writer for GORM's logger
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	rds := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", rc.ip, rc.port),
		Password: rc.password,
		DB:       rc.db,
	})

	stg := &Storage{
		db:  db,
		rds: rds,
		lg:  zerolog.New(os.Stdout).With().Str("Module", "Storage").Timestamp().Logger(),
	}
	if err := stg.initTables(); err != nil {
		return nil, err
	}
	return stg, nil
}

// NewStorageWithDB wraps an existing GORM handle, used by tests.
func NewStorageWithDB(db *gorm.DB) (*Storage, error) {
	stg := &Storage{
		db: db,
		lg: zerolog.New(os.Stdout).With().Str("Module", "Storage").Timestamp().Logger(),
	}
	if err := stg.initTables(); err != nil {
		return nil, err
	}
	return stg, nil
}

type MysqlConfig struct {
	user     string
	password string
	ip       string
	port     string
	scheme   string
}

func NewMysqlConfig(user string, password string, ip string, port string, scheme string) *MysqlConfig {
	return &MysqlConfig{
		user:     user,
		password: password,
		ip:       ip,
		port:     port,
		scheme:   scheme,
	}
}

type RedisConfig struct {
	password string
	ip       string
	port     string
	db       int
}

func NewRedisConfig(password string, ip string, port string, db int) *RedisConfig {
	return &RedisConfig{
		password: password,
		ip:       ip,
		port:     port,
		db:       db,
	}
}

func stgDsn(conf *MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", conf.user, conf.password, conf.ip, conf.port, conf.scheme)
}

func (s *Storage) initTables() error {
	return s.db.AutoMigrate(&m.Submission{}, &m.PairSnapshot{}, &m.User{})
}

// GetDB returns the underlying GORM DB instance for advanced queries
func (s *Storage) GetDB() *gorm.DB {
	return s.db
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}
