// Package backup snapshots the sandbox's SQLite database.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mealplanner/internal/logger"
)

const (
	// MaxSnapshots is how many snapshots Create keeps.
	MaxSnapshots = 14
	DirName      = "snapshots"
	filePrefix   = "sandbox-"
	fileSuffix   = ".db"
	stampLayout  = "20060102-150405"
)

var ErrNoSnapshots = errors.New("no snapshots found")

// Snapshot is one copy of the database on disk.
type Snapshot struct {
	Path  string
	Taken time.Time
	Size  int64
}

// Manager creates and restores snapshots of one sandbox database.
type Manager struct {
	dbPath string
	dir    string
	now    func() time.Time
}

// NewManager stores snapshots in a directory next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		now:    time.Now,
	}
}

// Dir is the directory holding the snapshots.
func (m *Manager) Dir() string {
	return m.dir
}

// Create copies the database into a new snapshot and prunes the oldest
// ones beyond MaxSnapshots.
func (m *Manager) Create(ctx context.Context) (Snapshot, error) {
	snap, err := m.snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.prune(); err != nil {
		logger.Warn("Failed to prune old snapshots", "dir", m.dir, "error", err)
	}
	return snap, nil
}

func (m *Manager) snapshot(ctx context.Context) (Snapshot, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Snapshot{}, fmt.Errorf("database not found: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	taken := m.now()
	path, err := m.freePath(taken)
	if err != nil {
		return Snapshot{}, err
	}
	if err := vacuumInto(ctx, m.dbPath, path); err != nil {
		return Snapshot{}, fmt.Errorf("failed to snapshot database: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	logger.Info("Created sandbox snapshot", "path", path, "size", info.Size())
	return Snapshot{Path: path, Taken: taken.Truncate(time.Second), Size: info.Size()}, nil
}

// freePath names a snapshot after t, adding a counter when two snapshots
// land in the same second.
func (m *Manager) freePath(t time.Time) (string, error) {
	stamp := t.Format(stampLayout)
	for i := 0; i < 100; i++ {
		name := filePrefix + stamp + fileSuffix
		if i > 0 {
			name = fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, i, fileSuffix)
		}
		path := filepath.Join(m.dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to find a free snapshot name for %s", stamp)
}

// vacuumInto writes a consistent copy of src to dst.
func vacuumInto(ctx context.Context, src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ping(ctx, db); err != nil {
		return fmt.Errorf("source database is unreadable: %w", err)
	}
	_, err = db.ExecContext(ctx, "VACUUM INTO ?", dst)
	return err
}

func ping(ctx context.Context, db *sql.DB) error {
	var n int
	return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

// List returns snapshots newest first. Files that don't follow the naming
// scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	snaps := []Snapshot{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		taken, seq, ok := parseName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:  filepath.Join(m.dir, e.Name()),
			Taken: taken.Add(time.Duration(seq)),
			Size:  info.Size(),
		})
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Taken.After(snaps[j].Taken)
	})
	for i := range snaps {
		snaps[i].Taken = snaps[i].Taken.Truncate(time.Second)
	}
	return snaps, nil
}

// parseName returns the timestamp and same-second counter in a snapshot
// file name.
func parseName(name string) (time.Time, int, bool) {
	rest, ok := strings.CutPrefix(name, filePrefix)
	if !ok {
		return time.Time{}, 0, false
	}
	rest, ok = strings.CutSuffix(rest, fileSuffix)
	if !ok || len(rest) < len(stampLayout) {
		return time.Time{}, 0, false
	}

	seq := 0
	if extra := rest[len(stampLayout):]; extra != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(extra, "-"))
		if err != nil || !strings.HasPrefix(extra, "-") || n < 1 {
			return time.Time{}, 0, false
		}
		seq = n
	}
	t, err := time.ParseInLocation(stampLayout, rest[:len(stampLayout)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return t, seq, true
}

func (m *Manager) prune() error {
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxSnapshots; i < len(snaps); i++ {
		if err := os.Remove(snaps[i].Path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", snaps[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path, or the newest
// snapshot when path is empty. The current database is snapshotted first
// and that snapshot's path is returned. The sandbox must not be serving.
func (m *Manager) Restore(ctx context.Context, path string) (string, error) {
	if path == "" {
		snaps, err := m.List()
		if err != nil {
			return "", err
		}
		if len(snaps) == 0 {
			return "", ErrNoSnapshots
		}
		path = snaps[0].Path
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return "", err
	}
	err = ping(ctx, db)
	db.Close()
	if err != nil {
		return "", fmt.Errorf("snapshot %s is not a valid database: %w", path, err)
	}

	previous := ""
	if _, err := os.Stat(m.dbPath); err == nil {
		snap, err := m.snapshot(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to snapshot the current database: %w", err)
		}
		previous = snap.Path
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to copy snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Restored sandbox snapshot", "from", path, "previous", previous)
	return previous, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
