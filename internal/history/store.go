package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codefionn/codeflink/internal/logger"
)

// Store persists generation and command history in SQLite so past runs can
// be inspected across sessions.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Generation is one recorded LLM round trip.
type Generation struct {
	ID         int64     `json:"id"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Strategy   string    `json:"strategy"`
	TokensUsed int       `json:"tokens_used"`
	FromCache  bool      `json:"from_cache"`
	CreatedAt  time.Time `json:"created_at"`
}

// Command is one recorded shell execution.
type Command struct {
	ID         int64     `json:"id"`
	Command    string    `json:"command"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
	Blocked    bool      `json:"blocked"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStore opens (or creates) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	logger.Debug("history store opened at %s", dbPath)
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT,
		strategy TEXT,
		tokens_used INTEGER DEFAULT 0,
		from_cache BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		command TEXT NOT NULL,
		exit_code INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		blocked BOOLEAN NOT NULL DEFAULT FALSE,
		reason TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
	CREATE INDEX IF NOT EXISTS idx_commands_created_at ON commands(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordGeneration persists one LLM round trip.
func (s *Store) RecordGeneration(g *Generation) error {
	res, err := s.db.Exec(`
		INSERT INTO generations (prompt, response, provider, model, strategy, tokens_used, from_cache)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.Prompt, g.Response, g.Provider, g.Model, g.Strategy, g.TokensUsed, g.FromCache)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	g.ID, _ = res.LastInsertId()
	return nil
}

// RecordCommand persists one shell execution, including blocked attempts.
func (s *Store) RecordCommand(c *Command) error {
	res, err := s.db.Exec(`
		INSERT INTO commands (command, exit_code, duration_ms, blocked, reason)
		VALUES (?, ?, ?, ?, ?)`,
		c.Command, c.ExitCode, c.DurationMS, c.Blocked, c.Reason)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

// RecentGenerations returns the newest generations, most recent first.
func (s *Store) RecentGenerations(limit int) ([]*Generation, error) {
	rows, err := s.db.Query(`
		SELECT id, prompt, response, provider, model, strategy, tokens_used, from_cache, created_at
		FROM generations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var generations []*Generation
	for rows.Next() {
		g := &Generation{}
		if err := rows.Scan(&g.ID, &g.Prompt, &g.Response, &g.Provider, &g.Model,
			&g.Strategy, &g.TokensUsed, &g.FromCache, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		generations = append(generations, g)
	}
	return generations, rows.Err()
}

// RecentCommands returns the newest commands, most recent first.
func (s *Store) RecentCommands(limit int) ([]*Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, exit_code, duration_ms, blocked, reason, created_at
		FROM commands ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	defer rows.Close()

	var commands []*Command
	for rows.Next() {
		c := &Command{}
		var reason sql.NullString
		if err := rows.Scan(&c.ID, &c.Command, &c.ExitCode, &c.DurationMS, &c.Blocked, &reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		c.Reason = reason.String
		commands = append(commands, c)
	}
	return commands, rows.Err()
}
