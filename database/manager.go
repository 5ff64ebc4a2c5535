/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type defaultDatabaseManager struct {
	config          *ConnectionConfig
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	registerer      prometheus.Registerer
	mu              sync.RWMutex
	connected       bool
	lastError       error
	healthStatus    *HealthStatus
	reconnectTries  int
	stopHealthCheck chan struct{}
	healthCheckOnce sync.Once
	poolStats       prometheus.Collector
}

const healthCheckTimeout = 5 * time.Second

// ManagerOption customises a manager built by NewDatabaseManager.
type ManagerOption func(*defaultDatabaseManager)

// WithLogger sets the manager logger.
func WithLogger(logger Logger) ManagerOption {
	return func(dm *defaultDatabaseManager) {
		dm.logger = logger
	}
}

// WithMetricsRegisterer registers the query duration histogram on r when
// EnableMetrics is set.
func WithMetricsRegisterer(r prometheus.Registerer) ManagerOption {
	return func(dm *defaultDatabaseManager) {
		dm.registerer = r
	}
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun.
// If config is nil, a sensible default configuration is used.
func NewDatabaseManager(config *ConnectionConfig, opts ...ManagerOption) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	dm := &defaultDatabaseManager{
		config:          config,
		logger:          GetLogger(),
		registerer:      prometheus.DefaultRegisterer,
		healthStatus:    &HealthStatus{},
		stopHealthCheck: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}

	var err error
	dm.sqlDB, dm.db, err = dm.createConnection()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	dm.configureConnectionPool()

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.db.PingContext(ctxTimeout); err != nil {
		dm.lastError = err
		dm.dropPoolStats()
		_ = dm.db.Close()
		dm.db, dm.sqlDB = nil, nil
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if isSQLite(dm.config.Type) {
		if _, err := dm.db.ExecContext(ctxTimeout, "PRAGMA foreign_keys = ON"); err != nil {
			dm.lastError = err
			return fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	dm.connected = true
	dm.lastError = nil
	dm.reconnectTries = 0

	if dm.config.HealthCheckInterval > 0 && !dm.config.IsMemory() {
		dm.startHealthCheck()
	}

	if dm.logger != nil {
		dm.logger.Info("Database connected successfully", "type", dm.config.Type, "host", dm.config.Host)
	}
	return nil
}

func (dm *defaultDatabaseManager) createConnection() (*sql.DB, *bun.DB, error) {
	var sqlDB *sql.DB
	var db *bun.DB
	var err error

	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	switch strings.ToLower(dm.config.Type) {
	case "mysql":
		sqlDB, db, err = dm.createMySQLConnection()
	case "postgres", "postgresql":
		sqlDB, db, err = dm.createPostgreSQLConnection()
	case "sqlite", "sqlite3":
		sqlDB, db, err = dm.createSQLiteConnection()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}

	if err != nil {
		return nil, nil, err
	}

	if dm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	db.AddQueryHook(NewQueryHook(WithQueryHookEnv(queryDebugEnv)))

	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(dm.config.SlowQueryTime, dm.logger))
	}

	if dm.config.EnableMetrics {
		hook := NewMetricsHook()
		if err := hook.Register(dm.registerer); err != nil && dm.logger != nil {
			dm.logger.Warn("Failed to register query metrics", "error", err)
		}
		db.AddQueryHook(hook)
		dm.registerPoolStats(sqlDB)
	}

	return sqlDB, db, nil
}

// registerPoolStats exports database/sql pool statistics labelled with the
// database name.
func (dm *defaultDatabaseManager) registerPoolStats(sqlDB *sql.DB) {
	if dm.registerer == nil {
		return
	}
	name := dm.config.DBName
	if name == "" {
		name = strings.ToLower(dm.config.Type)
	}
	c := collectors.NewDBStatsCollector(sqlDB, name)
	if err := dm.registerer.Register(c); err != nil {
		if dm.logger != nil {
			dm.logger.Warn("Failed to register pool metrics", "error", err)
		}
		return
	}
	dm.poolStats = c
}

func (dm *defaultDatabaseManager) dropPoolStats() {
	if dm.poolStats != nil && dm.registerer != nil {
		dm.registerer.Unregister(dm.poolStats)
	}
	dm.poolStats = nil
}

func (dm *defaultDatabaseManager) createMySQLConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%s&readTimeout=%s&writeTimeout=%s",
			dm.config.Username,
			dm.config.Password,
			dm.config.Host,
			dm.config.Port,
			dm.config.DBName,
			dm.config.ConnectTimeout,
			dm.config.ReadTimeout,
			dm.config.WriteTimeout,
		)
	}

	sqlDB, err := sql.Open("mysql", strings.TrimPrefix(dsn, "mysql://"))
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, mysqldialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createPostgreSQLConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DSN
	if dsn == "" {
		sslMode := dm.config.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(dm.config.Username, dm.config.Password),
			Host:   fmt.Sprintf("%s:%d", dm.config.Host, dm.config.Port),
			Path:   "/" + dm.config.DBName,
		}
		q := u.Query()
		q.Set("sslmode", sslMode)
		q.Set("connect_timeout", fmt.Sprintf("%d", int(dm.config.ConnectTimeout.Seconds())))
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, pgdialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createSQLiteConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		dsn = "file:" + strings.TrimPrefix(dsn, "sqlite://")
	case dsn != "":
	case dm.config.IsMemory():
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	default:
		dsn = fmt.Sprintf("file:%s.db", dm.config.DBName)
	}

	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) configureConnectionPool() {
	if dm.sqlDB == nil {
		return
	}

	// sqlite pragmas are per connection; one connection keeps foreign keys on
	// and an in-memory database alive.
	if isSQLite(dm.config.Type) {
		dm.sqlDB.SetMaxIdleConns(1)
		dm.sqlDB.SetMaxOpenConns(1)
		dm.sqlDB.SetConnMaxLifetime(0)
		dm.sqlDB.SetConnMaxIdleTime(0)
		return
	}

	dm.sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns())
	dm.sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns())
	dm.sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	dm.sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	select {
	case dm.stopHealthCheck <- struct{}{}:
	default:
	}

	dm.dropPoolStats()

	if dm.db != nil {
		err := dm.db.Close()
		dm.db = nil
		dm.sqlDB = nil
		dm.connected = false

		if dm.logger != nil {
			if err != nil {
				dm.logger.Error("Failed to close database connection", "error", err)
			} else {
				dm.logger.Info("Database connection closed")
			}
		}

		return err
	}

	return nil
}

func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	if dm.logger != nil {
		dm.logger.Info("Attempting to reconnect to the database")
	}

	if err := dm.Disconnect(); err != nil {
		if dm.logger != nil {
			dm.logger.Warn("Error disconnecting existing connection", "error", err)
		}
	}

	return dm.Connect(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("database not connected")
	}

	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

// HealthCheck pings the database and records the outcome. The lock is not
// held during the ping so that queries are never blocked by a slow check.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.RLock()
	db, sqlDB := dm.db, dm.sqlDB
	dm.mu.RUnlock()

	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}
	if db == nil {
		status.LastError = "database not connected"
		dm.recordHealth(status, nil)
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	err := db.PingContext(pingCtx)
	cancel()
	status.ResponseTime = time.Since(start)
	status.Healthy = err == nil
	status.Connected = err == nil
	if err != nil {
		status.LastError = err.Error()
	}
	if sqlDB != nil {
		stats := sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}
	dm.recordHealth(status, err)
	return status
}

func (dm *defaultDatabaseManager) recordHealth(status *HealthStatus, err error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.healthStatus = status
	dm.lastError = err
}

func (dm *defaultDatabaseManager) startHealthCheck() {
	dm.healthCheckOnce.Do(func() {
		go dm.healthLoop(dm.config.HealthCheckInterval)
	})
}

func (dm *defaultDatabaseManager) healthLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-dm.stopHealthCheck:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*healthCheckTimeout)
		status := dm.HealthCheck(ctx)
		cancel()
		if status.Healthy || !dm.config.EnableReconnect {
			continue
		}
		if dm.logger != nil {
			dm.logger.Warn("Database health check failed", "error", status.LastError)
		}
		if stopped := dm.handleReconnect(); stopped {
			return
		}
	}
}

// handleReconnect retries the connection with a doubling delay until it
// succeeds or MaxReconnectTries attempts have failed. It reports whether a
// stop was requested while waiting.
func (dm *defaultDatabaseManager) handleReconnect() (stopped bool) {
	delay := dm.config.ReconnectInterval
	for dm.reconnectTries < dm.config.MaxReconnectTries {
		dm.reconnectTries++
		if dm.logger != nil {
			dm.logger.Info("Reconnecting to database", "try", dm.reconnectTries, "delay", delay)
		}
		select {
		case <-dm.stopHealthCheck:
			return true
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectTimeout)
		err := dm.Reconnect(ctx)
		cancel()
		if err == nil {
			if dm.logger != nil {
				dm.logger.Info("Database reconnected")
			}
			return false
		}
		if dm.logger != nil {
			dm.logger.Error("Reconnect failed", "error", err, "try", dm.reconnectTries)
		}
		delay *= 2
	}
	if dm.logger != nil {
		dm.logger.Error("Giving up on database reconnect", "tries", dm.reconnectTries)
	}
	return false
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// CreateTables bootstraps every registered model's table.
func (dm *defaultDatabaseManager) CreateTables(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewSchemaManager(db, dm.logger).CreateTables(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}

func isSQLite(typ string) bool {
	switch strings.ToLower(typ) {
	case "sqlite", "sqlite3":
		return true
	}
	return false
}
