package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bot-variantes/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// DB encapsula a conexão com o banco de dados. O motor só enxerga um armazenamento
// chave-valor: cada chave guarda um documento JSON completo.
type DB struct {
	conn      *sql.DB
	retention Retention
}

// Retention limita o crescimento da tabela de notificações
type Retention struct {
	MaxRecords int
	TTL        time.Duration
}

// New cria uma nova instância do banco de dados
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// Uma conexão só: as escritas em lote não disputam o arquivo
	conn.SetMaxOpenConns(1)

	db := &DB{
		conn:      conn,
		retention: Retention{MaxRecords: 500, TTL: 30 * 24 * time.Hour},
	}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Component("database").Info().Str("path", dbPath).Msg("Banco de dados inicializado com sucesso")
	return db, nil
}

// SetRetention ajusta a política de retenção das notificações
func (db *DB) SetRetention(r Retention) {
	db.retention = r
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.conn.Exec(createTableSQL)
	return err
}

// Get devolve o valor da chave; ok é falso se a chave não existe
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return get(ctx, db.conn, key)
}

// Set grava o valor da chave
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, db.conn, key, value)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q querier, key string) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("erro ao ler chave %s: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, q querier, key string, value []byte) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar chave %s: %w", key, err)
	}
	return nil
}

// setMany grava várias chaves com o mesmo querier; dentro de uma transação, ou todas
// entram ou nenhuma
func setMany(ctx context.Context, q querier, values map[string][]byte) error {
	for key, value := range values {
		if err := set(ctx, q, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
