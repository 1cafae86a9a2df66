package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func readFile(t *testing.T, path string) CredentialFile {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read credentials file: %v", err)
	}
	var f CredentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("parse credentials file: %v", err)
	}
	return f
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

func TestGet_NoFile_Absent(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), testLogger())

	v, ok, err := s.Get(context.Background(), session.KeyToken)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get() = (%q, %v), want absent", v, ok)
	}
	if s.Exists() {
		t.Error("Get() must not create the file")
	}
}

func TestSetGetRemove_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), testLogger())

	if err := s.Set(ctx, session.KeyToken, "12|abc"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	v, ok, err := s.Get(ctx, session.KeyToken)
	if err != nil || !ok || v != "12|abc" {
		t.Fatalf("Get() = (%q, %v, %v), want (12|abc, true, nil)", v, ok, err)
	}

	if err := s.Remove(ctx, session.KeyToken); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, session.KeyToken); ok {
		t.Error("token still present after Remove()")
	}

	// Removing an absent key is not an error.
	if err := s.Remove(ctx, "never-set"); err != nil {
		t.Errorf("Remove(absent) error: %v", err)
	}
}

func TestGet_CanceledContext(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.Get(ctx, session.KeyToken); err == nil {
		t.Error("Get() with canceled context should fail")
	}
	if err := s.Set(ctx, session.KeyToken, "x"); err == nil {
		t.Error("Set() with canceled context should fail")
	}
}

func TestGet_CorruptFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStore(path, testLogger())

	if _, _, err := s.Get(context.Background(), session.KeyToken); err == nil {
		t.Fatal("Get() on corrupt file should return an error")
	}

	// The next write replaces the corrupt file and keeps it as a backup.
	if err := s.Set(context.Background(), session.KeyRole, "pembeli"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if f := readFile(t, path); f.Values[session.KeyRole] != "pembeli" {
		t.Errorf("role = %q, want pembeli", f.Values[session.KeyRole])
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(bak) != "{not json" {
		t.Errorf("backup = %q, want original corrupt content", bak)
	}
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

func TestApply_IsOneRewrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, testLogger())

	if err := s.Apply(ctx, map[string]string{
		session.KeyToken: "old", session.KeySubRole: "kurir", session.KeyActorID: "9",
	}, nil); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	err := s.Apply(ctx,
		map[string]string{session.KeyToken: "new", session.KeyRole: "pembeli"},
		[]string{session.KeySubRole, session.KeyActorID})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	f := readFile(t, path)
	want := map[string]string{session.KeyToken: "new", session.KeyRole: "pembeli"}
	if len(f.Values) != len(want) {
		t.Fatalf("values = %v, want %v", f.Values, want)
	}
	for k, v := range want {
		if f.Values[k] != v {
			t.Errorf("values[%q] = %q, want %q", k, f.Values[k], v)
		}
	}
	if f.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", f.Version, SchemaVersion)
	}

	// The backup holds the state before the second Apply.
	bakData, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(bakData), `"old"`) {
		t.Errorf("backup does not contain previous token: %s", bakData)
	}
}

func TestApply_NoTmpFileLeftBehind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, testLogger())

	if err := s.Set(context.Background(), session.KeyToken, "t"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected .tmp file to be removed after write")
	}
}

func TestApply_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")
	s := NewFileStore(path, testLogger())

	if err := s.Set(context.Background(), session.KeyToken, "t"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if !s.Exists() {
		t.Error("credentials file not created")
	}
}

func TestApply_PreservesCreatedAt_UpdatesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, testLogger())

	if err := s.Set(ctx, session.KeyToken, "a"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	first := readFile(t, path)

	time.Sleep(10 * time.Millisecond)
	if err := s.Set(ctx, session.KeyToken, "b"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	second := readFile(t, path)

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestConcurrentWrites_DoNotCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, testLogger())

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Set(ctx, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Set() error: %v", err)
		}
	}

	f := readFile(t, path)
	if len(f.Values) != writers {
		t.Errorf("expected %d keys after concurrent writes, got %d", writers, len(f.Values))
	}
}

func TestPersistAndLoad_ThroughSessionHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), testLogger())

	want := session.Session{Token: "t", Role: "pegawai", SubRole: "hunter", ActorID: "5"}
	if err := session.Persist(ctx, s, want); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	if got := session.Load(ctx, s, testLogger()); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := session.Destroy(ctx, s); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	if got := session.Load(ctx, s, testLogger()); !got.Empty() {
		t.Errorf("Load() after Destroy = %+v, want empty", got)
	}
}

func TestWipe_RemovesAllFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, testLogger())

	for i := 0; i < 2; i++ {
		if err := s.Set(context.Background(), session.KeyToken, "t"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}
	if err := s.Wipe(); err != nil {
		t.Fatalf("Wipe() error: %v", err)
	}
	for _, p := range []string{path, path + ".bak", path + ".lock"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists after Wipe()", filepath.Base(p))
		}
	}
	// Wiping twice is fine.
	if err := s.Wipe(); err != nil {
		t.Errorf("second Wipe() error: %v", err)
	}
}

func TestPath_ReturnsConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	if got := NewFileStore(path, testLogger()).Path(); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
}

// ---------------------------------------------------------------------------
// Permission tests
// ---------------------------------------------------------------------------

func TestGet_TooOpenPermissions_WarnsButSucceeds(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), "credentials.json")
	data := []byte(`{"version":"1","values":{"token":"t"}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s := NewFileStore(path, logger)

	v, ok, err := s.Get(context.Background(), session.KeyToken)
	if err != nil || !ok || v != "t" {
		t.Fatalf("Get() = (%q, %v, %v), want (t, true, nil)", v, ok, err)
	}
	if !strings.Contains(buf.String(), "too-open permissions") {
		t.Errorf("expected warning about too-open permissions, got log output: %q", buf.String())
	}
}

func TestApply_ExplicitChmod0600(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, testLogger())

	if err := s.Set(context.Background(), session.KeyToken, "t"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := s.Set(context.Background(), session.KeyToken, "u"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 after save, got %04o", perm)
	}
}
