// Package filestore does the file I/O behind every repository: line reads, whole-file
// rewrites, and timestamped backups.
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hospital-records/pkg/clock"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	backupSuffix    = ".bak"
	timestampLayout = "2006-01-02_15-04-05"
	filePerm        = 0o644
	dirPerm         = 0o755
)

// ErrNoBackup is returned by RestoreFromBackup when no backup of the file exists.
var ErrNoBackup = errors.New("no backup found")

// FileStore owns low-level access to the data directory.
// It is safe for concurrent use on distinct paths; callers serialise access to a single path.
type FileStore struct {
	fs        afero.Fs
	backupDir string
	clock     clock.Clock
	log       *logrus.Logger
}

// New returns a FileStore on the OS filesystem.
func New(backupDir string, clk clock.Clock, log *logrus.Logger) *FileStore {
	return NewWithFs(afero.NewOsFs(), backupDir, clk, log)
}

// NewWithFs returns a FileStore on an arbitrary afero filesystem (in-memory for tests).
func NewWithFs(fs afero.Fs, backupDir string, clk clock.Clock, log *logrus.Logger) *FileStore {
	return &FileStore{
		fs:        fs,
		backupDir: backupDir,
		clock:     clk,
		log:       log,
	}
}

// BackupDir is where CreateBackup writes copies.
func (s *FileStore) BackupDir() string {
	return s.backupDir
}

// ReadLines returns the lines of path that are neither blank nor '#' comments.
func (s *FileStore) ReadLines(path string) ([]string, error) {
	all, err := s.ReadAllLines(path)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(all))
	for _, line := range all {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ReadAllLines returns every line of path without filtering. A trailing newline does not
// produce an empty last line.
func (s *FileStore) ReadAllLines(path string) ([]string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return []string{}, nil
	}
	return strings.Split(content, "\n"), nil
}

// WriteLines replaces the content of path with lines. The data goes to a temporary file in
// the same directory first and is renamed over path, so readers never see a half-written file.
func (s *FileStore) WriteLines(path string, lines []string) error {
	if err := s.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// AppendLine adds one line at the end of path, creating it if needed.
func (s *FileStore) AppendLine(path, line string) error {
	if err := s.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := s.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CreateFileIfNotExists creates path containing header when it does not exist yet.
func (s *FileStore) CreateFileIfNotExists(path string, header []string) error {
	if s.FileExists(path) {
		return nil
	}
	return s.WriteLines(path, header)
}

// CreateDirectoryIfNotExists is MkdirAll.
func (s *FileStore) CreateDirectoryIfNotExists(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return s.fs.MkdirAll(dir, dirPerm)
}

// FileExists reports whether path exists.
func (s *FileStore) FileExists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

// CopyFile copies src to dst, overwriting dst.
func (s *FileStore) CopyFile(src, dst string) error {
	data, err := afero.ReadFile(s.fs, src)
	if err != nil {
		return err
	}
	if err := s.CreateDirectoryIfNotExists(filepath.Dir(dst)); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, dst, data, filePerm)
}

// DeleteFile removes path. Deleting a missing file is not an error.
func (s *FileStore) DeleteFile(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// CreateBackup copies path to <backupDir>/<name>_<YYYY-MM-DD_HH-MM-SS>.bak and returns the
// backup path. When path does not exist there is nothing to back up and "" is returned.
// Two backups in the same second overwrite each other.
func (s *FileStore) CreateBackup(path string) (string, error) {
	if !s.FileExists(path) {
		return "", nil
	}
	if err := s.CreateDirectoryIfNotExists(s.backupDir); err != nil {
		return "", err
	}

	stamp := s.clock.Now().Format(timestampLayout)
	dst := filepath.Join(s.backupDir, fmt.Sprintf("%s_%s%s", filepath.Base(path), stamp, backupSuffix))
	if err := s.CopyFile(path, dst); err != nil {
		return "", err
	}

	s.log.Debugf("Backed up %s to %s", path, dst)
	return dst, nil
}

// ListBackups returns the backups of path, oldest first.
func (s *FileStore) ListBackups(path string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	prefix := filepath.Base(path) + "_"
	var backups []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		backups = append(backups, filepath.Join(s.backupDir, name))
	}
	// Timestamps are zero-padded and most-significant first, so name order is age order.
	sort.Strings(backups)
	return backups, nil
}

// RestoreFromBackup copies the newest backup of path back over path and returns the backup used.
func (s *FileStore) RestoreFromBackup(path string) (string, error) {
	backups, err := s.ListBackups(path)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNoBackup
	}

	latest := backups[len(backups)-1]
	if err := s.CopyFile(latest, path); err != nil {
		return "", fmt.Errorf("restore %s from %s: %w", path, latest, err)
	}

	s.log.Infof("Restored %s from %s", path, latest)
	return latest, nil
}
