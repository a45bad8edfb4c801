package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T) (*FileStore, afero.Fs, *manualClock) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	fs := afero.NewMemMapFs()
	clk := &manualClock{now: time.Date(2030, 1, 2, 9, 30, 0, 0, time.UTC)}
	return NewWithFs(fs, "/data/backup", clk, log), fs, clk
}

func TestWriteThenReadLinesSkipsCommentsAndBlanks(t *testing.T) {
	s, _, _ := newTestStore(t)
	path := "/data/medicines.txt"

	err := s.WriteLines(path, []string{"# Medicine records", "", "MED001|A", "  ", "MED002|B"})
	if err != nil {
		t.Fatalf("WriteLines: %v", err)
	}

	lines, err := s.ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if want := []string{"MED001|A", "MED002|B"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("ReadLines = %v, want %v", lines, want)
	}

	all, err := s.ReadAllLines(path)
	if err != nil {
		t.Fatalf("ReadAllLines: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("ReadAllLines returned %d lines, want 5", len(all))
	}
	if s.FileExists(path + ".tmp") {
		t.Error("temporary file left behind")
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.ReadLines("/data/nothing.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want os.ErrNotExist", err)
	}
}

func TestReadAllLinesHandlesCRLF(t *testing.T) {
	s, fs, _ := newTestStore(t)
	if err := afero.WriteFile(fs, "/data/a.txt", []byte("one\r\ntwo\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := s.ReadAllLines("/data/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"one", "two"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("got %v, want %v", lines, want)
	}
}

func TestAppendLine(t *testing.T) {
	s, _, _ := newTestStore(t)
	path := "/data/audit.log"
	for _, line := range []string{"first", "second"} {
		if err := s.AppendLine(path, line); err != nil {
			t.Fatalf("AppendLine: %v", err)
		}
	}
	lines, err := s.ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"first", "second"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("got %v, want %v", lines, want)
	}
}

func TestCreateFileIfNotExistsKeepsExisting(t *testing.T) {
	s, _, _ := newTestStore(t)
	path := "/data/doctors.txt"
	if err := s.CreateFileIfNotExists(path, []string{"# header"}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteLines(path, []string{"D001|x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateFileIfNotExists(path, []string{"# header"}); err != nil {
		t.Fatal(err)
	}
	lines, _ := s.ReadAllLines(path)
	if !reflect.DeepEqual(lines, []string{"D001|x"}) {
		t.Errorf("existing file was overwritten: %v", lines)
	}
}

func TestCreateBackupOfMissingFileIsNoop(t *testing.T) {
	s, _, _ := newTestStore(t)
	dst, err := s.CreateBackup("/data/missing.txt")
	if err != nil || dst != "" {
		t.Fatalf("CreateBackup = %q, %v; want empty, nil", dst, err)
	}
}

func TestBackupAndRestoreNewest(t *testing.T) {
	s, _, clk := newTestStore(t)
	path := "/data/patients.txt"

	if err := s.WriteLines(path, []string{"v1"}); err != nil {
		t.Fatal(err)
	}
	first, err := s.CreateBackup(path)
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if want := filepath.Join("/data/backup", "patients.txt_2030-01-02_09-30-00.bak"); first != want {
		t.Errorf("backup path = %q, want %q", first, want)
	}

	clk.now = clk.now.Add(time.Minute)
	if err := s.WriteLines(path, []string{"v2"}); err != nil {
		t.Fatal(err)
	}
	second, err := s.CreateBackup(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.WriteLines(path, []string{"v3"}); err != nil {
		t.Fatal(err)
	}

	backups, err := s.ListBackups(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(backups, []string{first, second}) {
		t.Errorf("ListBackups = %v", backups)
	}

	used, err := s.RestoreFromBackup(path)
	if err != nil {
		t.Fatalf("RestoreFromBackup: %v", err)
	}
	if used != second {
		t.Errorf("restored from %q, want %q", used, second)
	}
	lines, _ := s.ReadLines(path)
	if !reflect.DeepEqual(lines, []string{"v2"}) {
		t.Errorf("restored content = %v, want [v2]", lines)
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.RestoreFromBackup("/data/accounts.txt"); !errors.Is(err, ErrNoBackup) {
		t.Fatalf("got %v, want ErrNoBackup", err)
	}
}

func TestDeleteFileMissingIsNotError(t *testing.T) {
	s, _, _ := newTestStore(t)
	if err := s.DeleteFile("/data/none.txt"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
}
