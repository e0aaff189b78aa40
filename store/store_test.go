// ABOUTME: Tests for the snapshot store
// ABOUTME: Covers dedupe, pruning, prefix lookup, compression and deletion against a temp database

package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T, limit int) *Backups {
	t.Helper()

	b, err := Open(filepath.Join(t.TempDir(), "nested", "backups.db"), limit)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return b
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "backups.db")

	b, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = b.Close() }()

	if _, err := os.Stat(filepath.Join(dir, "a", "b")); err != nil {
		t.Errorf("expected backup directory: %v", err)
	}
}

func TestSave_SkipsIdenticalContent(t *testing.T) {
	b := openTestStore(t, 0)

	first, saved, err := b.Save("/p.kdenlive", "edit", []byte("<mlt/>"))
	if err != nil || !saved {
		t.Fatalf("first Save = %t, %v", saved, err)
	}

	again, saved, err := b.Save("/p.kdenlive", "edit", []byte("<mlt/>"))
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if saved {
		t.Error("identical content should not be saved twice")
	}
	if again.ID != first.ID {
		t.Errorf("got id %s, want existing %s", again.ID, first.ID)
	}

	if _, saved, _ := b.Save("/p.kdenlive", "edit", []byte("<mlt></mlt>")); !saved {
		t.Error("changed content should be saved")
	}

	// Same content under another project is its own history
	if _, saved, _ := b.Save("/other.kdenlive", "edit", []byte("<mlt/>")); !saved {
		t.Error("content should be saved for another project")
	}

	list, err := b.List("/p.kdenlive")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d backups, want 2", len(list))
	}
}

func TestSave_PrunesToLimit(t *testing.T) {
	b := openTestStore(t, 3)

	var ids []string
	for _, content := range []string{"a", "b", "c", "d", "e"} {
		backup, _, err := b.Save("proj", content, []byte(content))
		if err != nil {
			t.Fatalf("Save(%s) failed: %v", content, err)
		}
		ids = append(ids, backup.ID)
	}

	list, err := b.List("proj")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("got %d backups, want 3", len(list))
	}

	// Newest first
	for i, want := range []string{"e", "d", "c"} {
		if list[i].Label != want {
			t.Errorf("backup %d label = %q, want %q", i, list[i].Label, want)
		}
	}

	if _, err := b.Load(ids[0]); !errors.Is(err, ErrBackupNotFound) {
		t.Errorf("oldest backup should be pruned, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	b := openTestStore(t, 0)

	backup, _, err := b.Save("proj", "first", []byte("<mlt>one</mlt>"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := b.Load(backup.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got.Content) != "<mlt>one</mlt>" || got.Project != "proj" || got.Size != 14 {
		t.Errorf("loaded %+v", got)
	}
	if !got.CreatedAt.Equal(backup.CreatedAt) {
		t.Errorf("created at %v, want %v", got.CreatedAt, backup.CreatedAt)
	}

	byPrefix, err := b.Load(backup.ID[:8])
	if err != nil || byPrefix.ID != backup.ID {
		t.Errorf("Load by prefix = %s, %v", byPrefix.ID, err)
	}

	if _, err := b.Load("nope"); !errors.Is(err, ErrBackupNotFound) {
		t.Errorf("Load(nope) error = %v, want ErrBackupNotFound", err)
	}

	// A LIKE wildcard is not a prefix match
	if _, err := b.Load("%"); !errors.Is(err, ErrBackupNotFound) {
		t.Errorf("Load(%%) error = %v, want ErrBackupNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	b := openTestStore(t, 0)

	backup, _, err := b.Save("proj", "", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Delete(backup.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := b.Delete(backup.ID); !errors.Is(err, ErrBackupNotFound) {
		t.Errorf("second Delete error = %v, want ErrBackupNotFound", err)
	}

	list, _ := b.List("proj")
	if len(list) != 0 {
		t.Errorf("got %d backups after delete, want 0", len(list))
	}
}

func TestSave_CompressesContent(t *testing.T) {
	b := openTestStore(t, 0)

	content := []byte(strings.Repeat("<entry producer=\"producer0\" in=\"0\" out=\"24\"/>\n", 200))

	backup, saved, err := b.Save("proj", "", content)
	if err != nil || !saved {
		t.Fatalf("Save = %v, %v", saved, err)
	}

	if backup.Stored <= 0 || backup.Stored >= backup.Size {
		t.Errorf("stored %d bytes for %d bytes of repetitive XML", backup.Stored, backup.Size)
	}

	list, err := b.List("proj")
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if list[0].Stored != backup.Stored || list[0].Size != int64(len(content)) {
		t.Errorf("listed sizes %d/%d, want %d/%d", list[0].Stored, list[0].Size, backup.Stored, len(content))
	}

	got, err := b.Load(backup.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(got.Content, content) {
		t.Error("loaded content differs from saved content")
	}
}

func TestLoad_DetectsCorruption(t *testing.T) {
	b := openTestStore(t, 0)

	backup, _, err := b.Save("proj", "", []byte("<mlt>one</mlt>"))
	if err != nil {
		t.Fatal(err)
	}

	other, err := compress([]byte("<mlt>two</mlt>"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.conn.Exec(`UPDATE backups SET content = ? WHERE id = ?`, other, backup.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Load(backup.ID); !errors.Is(err, ErrCorruptBackup) {
		t.Errorf("Load error = %v, want ErrCorruptBackup", err)
	}
}
