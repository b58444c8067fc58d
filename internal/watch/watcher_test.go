package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileWatcher_Start(t *testing.T) {
	tmpDir := t.TempDir()

	srcDir := filepath.Join(tmpDir, "src", "app")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	testFile := filepath.Join(srcDir, "card.component.ts")
	if err := os.WriteFile(testFile, []byte("export class Card {}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(tmpDir, Options{Patterns: []string{"*.ts"}}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, files)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond) // Allow watcher to initialize
	if err := os.WriteFile(testFile, []byte("export class Card { x = 1; }"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "notes.md"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("Failed to write unrelated file: %v", err)
	}

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Fatal("Expected changes to be detected in a nested directory")
	}
	for _, batch := range changes {
		for _, file := range batch {
			if file != testFile {
				t.Errorf("Unexpected file reported: %s", file)
			}
		}
	}
}

func TestFileWatcher_FindDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"src/app", "node_modules/pkg", "dist", ".git/objects", "src/.cache"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, filepath.FromSlash(dir)), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	watcher := &FileWatcher{root: tmpDir}
	dirs, err := watcher.findDirectories(tmpDir)
	if err != nil {
		t.Fatalf("findDirectories returned error: %v", err)
	}

	expected := []string{tmpDir, filepath.Join(tmpDir, "src"), filepath.Join(tmpDir, "src", "app")}
	if len(dirs) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, dirs)
	}
	for i := range expected {
		if dirs[i] != expected[i] {
			t.Errorf("dirs[%d] = %s, expected %s", i, dirs[i], expected[i])
		}
	}
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var calls int
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		files = f
	})

	debouncer.Add("b.ts")
	debouncer.Add("a.ts")
	debouncer.Add("b.ts") // Duplicate

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Fatalf("Expected one batched callback, got %d", calls)
	}
	if len(files) != 2 || files[0] != "a.ts" || files[1] != "b.ts" {
		t.Errorf("Expected sorted unique files [a.ts b.ts], got %v", files)
	}
}

func TestDebouncer_MultipleFlushes(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	})

	debouncer.Add("file1.ts")
	time.Sleep(80 * time.Millisecond)

	debouncer.Add("file2.ts")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if callCount != 2 {
		t.Errorf("Expected 2 callback calls, got %d", callCount)
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var mu sync.Mutex
	called := false

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	debouncer.Add("file.ts")
	debouncer.Stop()
	debouncer.Add("late.ts")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("Expected no callback after Stop")
	}
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	root := filepath.FromSlash("/project")
	watcher := &FileWatcher{
		root:    root,
		ignored: []string{"*.spec.ts", "*.swp"},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"src/app/card.component.ts", false},
		{"src/app/card.component.spec.ts", true},
		{"src/app/.card.ts.swp", true},
		{"node_modules/@angular/core/index.d.ts", true},
		{"dist/main.ts", true},
		{".angular/cache/x.ts", true},
		{"src/.hidden", true},
		{"src/distance.ts", false},
	}

	for _, tt := range tests {
		path := filepath.Join(root, filepath.FromSlash(tt.path))
		result := watcher.shouldIgnore(path)
		if result != tt.expected {
			t.Errorf("shouldIgnore(%q) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_MatchesPattern(t *testing.T) {
	tests := []struct {
		patterns []string
		path     string
		expected bool
	}{
		{[]string{"*.ts"}, "card.component.ts", true},
		{[]string{"*.ts"}, "types.d.ts", true},
		{[]string{"*.ts"}, "card.component.html", false},
		{[]string{"*.ts", "tsconfig.json"}, "tsconfig.json", true},
		{[]string{}, "anything.txt", true}, // No patterns = match all
	}

	for _, tt := range tests {
		watcher := &FileWatcher{patterns: tt.patterns}
		result := watcher.matchesPattern(tt.path)
		if result != tt.expected {
			t.Errorf("matchesPattern(%v, %q) = %v, expected %v",
				tt.patterns, tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	watcher, err := NewFileWatcher(t.TempDir(), Options{Patterns: []string{"*.ts"}},
		func(files []string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	// Second stop is a no-op
	if err := watcher.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
}

func BenchmarkDebouncer_Add(b *testing.B) {
	debouncer := NewDebouncer(100 * time.Millisecond)
	debouncer.SetCallback(func(files []string) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		debouncer.Add("file.ts")
	}
}
