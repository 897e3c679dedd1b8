package layout

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps layout snapshots in a SQLite database
type SQLiteStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and applies migrations.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating layout db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{logger: logger, db: db}
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.Migrate(sub); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Layout store ready", zap.String("path", dbPath))
	return s, nil
}

// Migrate applies the numbered .sql files of dir that were not applied yet
func (s *SQLiteStore) Migrate(dir fs.FS) error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		version, err := strconv.Atoi(strings.SplitN(f, "_", 2)[0])
		if err != nil {
			return fmt.Errorf("invalid migration filename %q: expected numeric prefix", f)
		}

		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(dir, f)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", f, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		s.logger.Debug("Applied migration", zap.String("file", f))
	}
	return nil
}

// Reset drops the stored snapshots of a content type
func (s *SQLiteStore) Reset(ctx context.Context, contentType domain.ContentType) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM layout_snapshots WHERE content_type = ?", string(contentType)); err != nil {
		return fmt.Errorf("resetting layout %s: %w", contentType, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Append stores one window snapshot
func (s *SQLiteStore) Append(ctx context.Context, snapshot domain.LayoutSnapshot) error {
	return insertSnapshot(ctx, s.db, snapshot.ContentType, snapshot)
}

// Replace swaps the snapshots of contentType for snapshots atomically
func (s *SQLiteStore) Replace(ctx context.Context, contentType domain.ContentType, snapshots []domain.LayoutSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM layout_snapshots WHERE content_type = ?", string(contentType)); err != nil {
		tx.Rollback()
		return fmt.Errorf("resetting layout %s: %w", contentType, err)
	}
	for _, snap := range snapshots {
		if err := insertSnapshot(ctx, tx, contentType, snap); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func insertSnapshot(ctx context.Context, db execer, contentType domain.ContentType, snapshot domain.LayoutSnapshot) error {
	settings, err := json.Marshal(snapshot.Settings)
	if err != nil {
		return fmt.Errorf("encoding window settings: %w", err)
	}
	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO layout_snapshots (content_type, settings, saved_at) VALUES (?, ?, ?)",
		string(contentType), string(settings), savedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving layout snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshots of a content type in save order
func (s *SQLiteStore) Load(ctx context.Context, contentType domain.ContentType) ([]domain.LayoutSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT settings, saved_at FROM layout_snapshots WHERE content_type = ? ORDER BY id",
		string(contentType))
	if err != nil {
		return nil, fmt.Errorf("loading layout %s: %w", contentType, err)
	}
	defer rows.Close()

	var out []domain.LayoutSnapshot
	for rows.Next() {
		var raw string
		var savedAt int64
		if err := rows.Scan(&raw, &savedAt); err != nil {
			return nil, err
		}
		snap := domain.LayoutSnapshot{
			ContentType: contentType,
			Settings:    domain.DefaultWindowSettings(),
			SavedAt:     time.UnixMilli(savedAt),
		}
		if err := json.Unmarshal([]byte(raw), &snap.Settings); err != nil {
			s.logger.Warn("Skipping unreadable layout snapshot", zap.Error(err))
			continue
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
