package status

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"gearbox/internal/config"
)

// Store manages deployment record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	// RecoveredFrom is set when a corrupt database was moved aside during
	// Open; callers should surface it as a warning.
	RecoveredFrom string
}

// DBFileName is the deployment record database file under the log dir.
const DBFileName = "deployments.db"

// Open initializes or connects to the deployment record database. A database
// that cannot be opened or verified is renamed aside and recreated: corrupt
// state degrades to an empty record set rather than failing the application.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, DBFileName)
	store, err := open(dbPath)
	if err == nil {
		return store, nil
	}

	corruptPath := fmt.Sprintf("%s.corrupt-%s", dbPath, time.Now().UTC().Format("20060102T150405"))
	if renameErr := os.Rename(dbPath, corruptPath); renameErr != nil {
		return nil, fmt.Errorf("open record db: %w", err)
	}
	store, reopenErr := open(dbPath)
	if reopenErr != nil {
		return nil, fmt.Errorf("recreate record db: %w", reopenErr)
	}
	store.RecoveredFrom = corruptPath
	return store, nil
}

func open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns every deployment record keyed by vehicle name.
func (s *Store) Load(ctx context.Context) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT vehicle, deployed, deployed_at, files_json FROM deployments ORDER BY vehicle")
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]Record)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records[record.Vehicle] = record
	}
	return records, rows.Err()
}

// Get fetches the record for one vehicle, or nil when none exists.
func (s *Store) Get(ctx context.Context, vehicle string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT vehicle, deployed, deployed_at, files_json FROM deployments WHERE vehicle = ?", vehicle)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &record, nil
}

// Upsert creates or replaces the record for a vehicle. Records are never
// silently dropped; redeployments update in place.
func (s *Store) Upsert(ctx context.Context, record Record) error {
	if record.Vehicle == "" {
		return errors.New("vehicle name required")
	}
	filesJSON, err := json.Marshal(record.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}
	var deployedAt any
	if !record.DeployedAt.IsZero() {
		deployedAt = record.DeployedAt.UTC().Format(time.RFC3339)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deployments (vehicle, deployed, deployed_at, files_json)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(vehicle) DO UPDATE SET
             deployed = excluded.deployed,
             deployed_at = excluded.deployed_at,
             files_json = excluded.files_json`,
		record.Vehicle, boolToInt(record.Deployed), deployedAt, string(filesJSON))
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// Clear removes all deployment records. Deployed files on disk are untouched.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM deployments")
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		vehicle    string
		deployed   int64
		deployedAt sql.NullString
		filesJSON  sql.NullString
	)
	if err := scanner.Scan(&vehicle, &deployed, &deployedAt, &filesJSON); err != nil {
		return Record{}, err
	}

	record := Record{Vehicle: vehicle, Deployed: deployed != 0}
	if deployedAt.Valid && deployedAt.String != "" {
		if ts, err := time.Parse(time.RFC3339, deployedAt.String); err == nil {
			record.DeployedAt = ts
		}
	}
	if filesJSON.Valid && filesJSON.String != "" {
		if err := json.Unmarshal([]byte(filesJSON.String), &record.Files); err != nil {
			return Record{}, fmt.Errorf("decode files for %s: %w", vehicle, err)
		}
	}
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
