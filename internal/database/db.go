// Package database opens the MySQL connection pool shared by the
// repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
)

const pingTimeout = 5 * time.Second

// Open connects to the MySQL instance described by cfg and verifies it
// with a ping before returning. ParseTime maps DATETIME columns to
// time.Time for the created/updated timestamps; reservation bounds are
// read back formatted by the queries themselves. Loc is UTC so every
// timestamp lives in one zone regardless of the server setting.
func Open(cfg config.Config) (*sql.DB, error) {
	dsnCfg := mysql.NewConfig()
	dsnCfg.User = cfg.DBUser
	dsnCfg.Passwd = cfg.DBPass
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = cfg.DBHost + ":" + cfg.DBPort
	dsnCfg.DBName = cfg.DBName
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC
	dsnCfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLife)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s/%s: %w", dsnCfg.Addr, cfg.DBName, err)
	}
	return db, nil
}
