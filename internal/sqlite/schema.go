package sqlite

// Schema DDL for the config table. The column layout is shared with
// databases written by earlier versions of the tool.
const createConfig = `CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT,
    data_type TEXT NOT NULL
);`

// Row statements.
const (
	upsertConfig = `INSERT OR REPLACE INTO config (key, value, data_type) VALUES (?, ?, ?)`
	selectConfig = `SELECT value, data_type FROM config WHERE key = ?`
	deleteConfig = `DELETE FROM config WHERE key = ?`
)
