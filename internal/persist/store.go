package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/logger"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a template does not exist.
var ErrNotFound = errors.New("template not found")

// Store handles persistence of templates and generation history using SQLite
type Store struct {
	db *sql.DB
	mu sync.RWMutex
	// now is replaced in tests
	now func() time.Time
}

// NewStore creates a new SQLite-backed persistence store at the given path
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// init creates the necessary tables if they don't exist
func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS templates (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL UNIQUE,
			category    TEXT NOT NULL DEFAULT '',
			blocks      TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS generations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			provider    TEXT NOT NULL DEFAULT '',
			prompt      TEXT NOT NULL,
			status      TEXT NOT NULL,
			result      TEXT,
			error_kind  TEXT,
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_templates_category ON templates(category);
		CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at);
	`)
	return err
}

// SaveTemplate saves or replaces the template with the given name
func (s *Store) SaveTemplate(name, category string, list []blocks.Block) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("template name is required")
	}
	if _, err := blocks.NewCollection(list...); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(timeLayout)
	_, err := s.db.Exec(`
		INSERT INTO templates (name, category, blocks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category=excluded.category, blocks=excluded.blocks, updated_at=excluded.updated_at
	`, name, category, toJSON(list), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return s.getTemplateInternal(name)
}

// GetTemplate loads a template by name
func (s *Store) GetTemplate(name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTemplateInternal(strings.TrimSpace(name))
}

func (s *Store) getTemplateInternal(name string) (*Template, error) {
	row := s.db.QueryRow(`
		SELECT id, name, category, blocks, created_at, updated_at
		FROM templates
		WHERE name = ?
	`, name)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, err
}

func scanTemplate(row scanner) (*Template, error) {
	var t Template
	var list, createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.Name, &t.Category, &list, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(list, &t.Blocks); err != nil {
		return nil, fmt.Errorf("template %q has corrupt blocks: %w", t.Name, err)
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

// ListTemplates lists templates ordered by name. An empty category lists all.
func (s *Store) ListTemplates(category string) ([]*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, category, blocks, created_at, updated_at
		FROM templates
		WHERE ? = '' OR category = ?
		ORDER BY name ASC
	`, category, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template by name
func (s *Store) DeleteTemplate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM templates WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// RecordGeneration stores a resolved generation
func (s *Store) RecordGeneration(g Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := g.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.Exec(`
		INSERT INTO generations (provider, prompt, status, result, error_kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.Provider, g.Prompt, g.Status, g.Result, g.ErrorKind, created.UTC().Format(timeLayout))
	return err
}

// RecentGenerations lists the newest generations first
func (s *Store) RecentGenerations(limit int) ([]Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, provider, prompt, status, result, error_kind, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		var result, kind sql.NullString
		var createdAt string
		if err := rows.Scan(&g.ID, &g.Provider, &g.Prompt, &g.Status, &result, &kind, &createdAt); err != nil {
			return nil, err
		}
		g.Result = result.String
		g.ErrorKind = kind.String
		g.CreatedAt = parseTime(createdAt)
		out = append(out, g)
	}
	return out, rows.Err()
}

// GenerationHook returns a result hook that records every authoritative
// outcome of a generation client.
func (s *Store) GenerationHook(provider string) generation.ResultHook {
	return func(prompt string, state generation.State) {
		g := Generation{Provider: provider, Prompt: prompt, Status: state.Phase.String()}
		switch state.Phase {
		case generation.PhaseSucceeded:
			g.Result = state.Text
		case generation.PhaseFailed:
			g.Result = state.Message
			g.ErrorKind = state.Kind.String()
		default:
			return
		}
		if err := s.RecordGeneration(g); err != nil {
			logger.Warn("Failed to record generation: %v", err)
		}
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
