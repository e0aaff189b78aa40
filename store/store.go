// ABOUTME: SQLite-backed store of MLT project snapshots, keyed by project path
// ABOUTME: Identical content is not saved twice, content is zstd compressed, each project keeps a bounded history

// Package store keeps backup snapshots of edited projects.
package store

import (
	"bytes"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

var ErrBackupNotFound = errors.New("backup not found")

// Backup describes one stored snapshot. Content is only filled by Load.
type Backup struct {
	ID        string
	Project   string
	CreatedAt time.Time
	Checksum  []byte
	Size      int64 // Uncompressed
	Stored    int64 // Compressed size in the database
	Label     string
	Content   []byte
}

// Backups wraps the backup database.
type Backups struct {
	conn  *sql.DB
	mu    sync.Mutex
	limit int
	now   func() time.Time
}

// Open opens or creates the database at path. limit is the number of snapshots
// kept per project, 0 or less keeps all of them.
func Open(path string, limit int) (*Backups, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating backup directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Backups{conn: conn, limit: limit, now: time.Now}, nil
}

// Close closes the database connection.
func (b *Backups) Close() error {
	return b.conn.Close()
}

// ProjectKey normalizes a project path into the key snapshots are stored under.
func ProjectKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return filepath.Clean(path)
}

// Save stores content as the newest snapshot of project. When the newest
// snapshot already has the same content, it is returned unchanged and saved is false.
func (b *Backups) Save(project, label string, content []byte) (Backup, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sum := blake3.Sum256(content)

	latest, err := b.latest(project)
	switch {
	case err == nil && bytes.Equal(latest.Checksum, sum[:]):
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrBackupNotFound):
		return Backup{}, false, err
	}

	compressed, err := compress(content)
	if err != nil {
		return Backup{}, false, err
	}

	backup := Backup{
		ID:        uuid.New().String(),
		Project:   project,
		CreatedAt: b.now(),
		Checksum:  sum[:],
		Size:      int64(len(content)),
		Stored:    int64(len(compressed)),
		Label:     label,
	}

	tx, err := b.conn.Begin()
	if err != nil {
		return Backup{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO backups (id, project, created_at, checksum, size, label, content) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		backup.ID, project, backup.CreatedAt.UnixNano(), backup.Checksum, backup.Size, label, compressed,
	)
	if err != nil {
		return Backup{}, false, fmt.Errorf("inserting backup: %w", err)
	}

	if b.limit > 0 {
		_, err = tx.Exec(
			`DELETE FROM backups WHERE project = ? AND id NOT IN (
				SELECT id FROM backups WHERE project = ? ORDER BY created_at DESC LIMIT ?)`,
			project, project, b.limit,
		)
		if err != nil {
			return Backup{}, false, fmt.Errorf("pruning backups: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Backup{}, false, fmt.Errorf("committing backup: %w", err)
	}

	return backup, true, nil
}

func (b *Backups) latest(project string) (Backup, error) {
	row := b.conn.QueryRow(
		`SELECT id, project, created_at, checksum, size, label, length(content) FROM backups
		 WHERE project = ? ORDER BY created_at DESC LIMIT 1`, project,
	)

	return scanBackup(row)
}

// List returns the snapshots of project, newest first.
func (b *Backups) List(project string) ([]Backup, error) {
	rows, err := b.conn.Query(
		`SELECT id, project, created_at, checksum, size, label, length(content) FROM backups
		 WHERE project = ? ORDER BY created_at DESC`, project,
	)
	if err != nil {
		return nil, fmt.Errorf("querying backups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var res []Backup
	for rows.Next() {
		backup, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, backup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating backups: %w", err)
	}

	return res, nil
}

// Load returns the snapshot with the given id, content included. A unique id
// prefix is accepted.
func (b *Backups) Load(id string) (Backup, error) {
	rows, err := b.conn.Query(
		`SELECT id, project, created_at, checksum, size, label, content FROM backups
		 WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%",
	)
	if err != nil {
		return Backup{}, fmt.Errorf("querying backup: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []Backup
	for rows.Next() {
		var (
			backup Backup
			ts     int64
		)
		if err := rows.Scan(&backup.ID, &backup.Project, &ts, &backup.Checksum, &backup.Size, &backup.Label, &backup.Content); err != nil {
			return Backup{}, fmt.Errorf("scanning backup: %w", err)
		}
		backup.CreatedAt = time.Unix(0, ts)
		backup.Stored = int64(len(backup.Content))
		found = append(found, backup)
	}

	if err := rows.Err(); err != nil {
		return Backup{}, fmt.Errorf("iterating backups: %w", err)
	}

	switch len(found) {
	case 0:
		return Backup{}, fmt.Errorf("%s: %w", id, ErrBackupNotFound)
	case 1:
		backup := found[0]

		content, err := decompress(backup.Content, backup.Checksum)
		if err != nil {
			return Backup{}, fmt.Errorf("backup %s: %w", backup.ID, err)
		}
		backup.Content = content

		return backup, nil
	}

	return Backup{}, fmt.Errorf("backup prefix %q is ambiguous", id)
}

// Delete removes one snapshot.
func (b *Backups) Delete(id string) error {
	res, err := b.conn.Exec(`DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting backup: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrBackupNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBackup(row scanner) (Backup, error) {
	var (
		backup Backup
		ts     int64
	)

	err := row.Scan(&backup.ID, &backup.Project, &ts, &backup.Checksum, &backup.Size, &backup.Label, &backup.Stored)
	if errors.Is(err, sql.ErrNoRows) {
		return Backup{}, ErrBackupNotFound
	}
	if err != nil {
		return Backup{}, fmt.Errorf("scanning backup: %w", err)
	}

	backup.CreatedAt = time.Unix(0, ts)

	return backup, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
