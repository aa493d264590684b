// Package sqlstore implements the store interfaces and the task store on
// database/sql, for PostgreSQL (pgx) and SQLite (modernc).
//
// Queries are written once with ? placeholders and rewritten per dialect.
// Timestamps are stored as Unix milliseconds and list-valued fields as JSON
// text (jsonb on PostgreSQL). The schema is managed with embedded goose
// migrations, one directory per dialect.
package sqlstore
