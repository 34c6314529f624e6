package db

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/sqlite"
)

var (
	dbClient database.IDatabase
)

var sqllist = []struct {
	name string
	sql  string
}{
	{
		name: "init_webdav_server_tab",
		sql: `
CREATE TABLE IF NOT EXISTS webdav_server_tab (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    server_id        TEXT NOT NULL,
    name             TEXT NOT NULL,
    url              TEXT NOT NULL,
    username         TEXT NOT NULL,
    use_tls          INTEGER NOT NULL DEFAULT 0,
    timeout          INTEGER NOT NULL DEFAULT 30,
    last_test_at     INTEGER NOT NULL DEFAULT 0,
    last_test_status TEXT NOT NULL DEFAULT 'unknown',
    last_test_error  TEXT NOT NULL DEFAULT '',
    server_type      TEXT NOT NULL DEFAULT 'generic',
    enabled          INTEGER NOT NULL DEFAULT 1,
    ctime            INTEGER,
    mtime            INTEGER,
    UNIQUE (server_id)
);
		`,
	},
	{
		name: "init_webdav_server_tab_name_idx",
		sql:  `CREATE INDEX IF NOT EXISTS idx_webdav_server_name ON webdav_server_tab (name);`,
	},
}

func InitDB(file string) error {
	ctx := context.Background()
	db, err := sqlite.New(file, func(db database.IDatabase) error {
		for _, item := range sqllist {
			if _, err := db.ExecContext(ctx, item.sql); err != nil {
				return fmt.Errorf("init sql failed, sql:%s, err:%w", item.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	dbClient = db
	return nil
}

func GetClient() database.IDatabase {
	return dbClient
}
