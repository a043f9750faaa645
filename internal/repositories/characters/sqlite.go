package characters

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

//go:embed schema.sql
var schema string

// SQLiteRepository persists finalized characters in a SQLite file. The
// character body is stored as JSON next to the indexed lookup columns.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens the database at path and applies the schema
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, dnderr.InvalidArgument("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create stores a new character
func (r *SQLiteRepository) Create(ctx context.Context, char *entities.Character) error {
	if err := validateCharacter(char); err != nil {
		return err
	}

	now := r.now().UTC()
	body, err := json.Marshal(char)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO characters (id, owner_id, realm_id, name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		char.ID, char.OwnerID, char.RealmID, char.Name, string(body), toMillis(now), toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dnderr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
				WithMeta("character_id", char.ID)
		}
		return fmt.Errorf("create character: %w", err)
	}

	char.CreatedAt = fromMillis(toMillis(now))
	char.UpdatedAt = char.CreatedAt
	return nil
}

// Get retrieves a character by ID
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM characters WHERE id = ?`, id)

	char, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}
	return char, nil
}

// GetByOwner retrieves all characters for a specific owner
func (r *SQLiteRepository) GetByOwner(ctx context.Context, ownerID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}

	return r.query(ctx,
		`SELECT data, created_at, updated_at FROM characters
		 WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
}

// GetByOwnerAndRealm retrieves all characters for a specific owner in a realm
func (r *SQLiteRepository) GetByOwnerAndRealm(ctx context.Context, ownerID, realmID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	if realmID == "" {
		return nil, dnderr.InvalidArgument("realm ID is required")
	}

	return r.query(ctx,
		`SELECT data, created_at, updated_at FROM characters
		 WHERE owner_id = ? AND realm_id = ? ORDER BY created_at, id`, ownerID, realmID)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*entities.Character, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var result []*entities.Character
	for rows.Next() {
		char, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		result = append(result, char)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return result, nil
}

// Update updates an existing character
func (r *SQLiteRepository) Update(ctx context.Context, char *entities.Character) error {
	if err := validateCharacter(char); err != nil {
		return err
	}

	body, err := json.Marshal(char)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters SET owner_id = ?, realm_id = ?, name = ?, data = ?, updated_at = ?
		 WHERE id = ?`,
		char.OwnerID, char.RealmID, char.Name, string(body), toMillis(now), char.ID,
	)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(char.ID)
	}

	char.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

// Delete removes a character
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row scanner) (*entities.Character, error) {
	var (
		body               string
		createdAt, updated int64
	)
	if err := row.Scan(&body, &createdAt, &updated); err != nil {
		return nil, err
	}

	var char entities.Character
	if err := json.Unmarshal([]byte(body), &char); err != nil {
		return nil, fmt.Errorf("unmarshal character: %w", err)
	}
	char.CreatedAt = fromMillis(createdAt)
	char.UpdatedAt = fromMillis(updated)
	return &char, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
