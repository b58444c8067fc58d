// Package watch reports batches of changed source files under a project root.
package watch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long the watcher waits for further events before
// reporting a batch.
const DefaultDelay = 100 * time.Millisecond

// skippedDirs are never registered with the watcher.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
}

// Options configures a FileWatcher.
type Options struct {
	// Patterns select the files reported, e.g. "*.ts". Empty matches all.
	Patterns []string
	// Ignored are base-name globs of files never reported.
	Ignored []string
	Delay   time.Duration
	Logger  *zap.Logger
}

// FileWatcher monitors a directory tree and triggers a callback with the
// files changed since the previous batch.
type FileWatcher struct {
	root      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	patterns  []string
	ignored   []string
	onChange  func([]string) error
	log       *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher for the tree under root.
func NewFileWatcher(root string, opts Options, onChange func([]string) error) (*FileWatcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fw := &FileWatcher{
		root:      absRoot,
		watcher:   watcher,
		debouncer: NewDebouncer(delay),
		patterns:  opts.Patterns,
		ignored:   opts.Ignored,
		onChange:  onChange,
		log:       log,
		stopChan:  make(chan struct{}),
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.log.Error("failed to handle file changes", zap.Strings("files", files), zap.Error(err))
		}
	})

	return fw, nil
}

// Start registers every directory under the root and begins watching.
func (fw *FileWatcher) Start() error {
	dirs, err := fw.findDirectories(fw.root)
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}

	for _, dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	fw.log.Debug("watching directories", zap.String("root", fw.root), zap.Int("count", len(dirs)))

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the file watcher. Pending changes are dropped.
func (fw *FileWatcher) Stop() error {
	select {
	case <-fw.stopChan:
		return nil
	default:
		close(fw.stopChan)
	}

	fw.wg.Wait()
	fw.debouncer.Stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("watcher error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	if fw.shouldIgnore(event.Name) {
		return
	}

	// New directories are registered so files created inside them are seen.
	if event.Has(fsnotify.Create) {
		if dirs, err := fw.findDirectories(event.Name); err == nil {
			for _, dir := range dirs {
				if err := fw.watcher.Add(dir); err != nil {
					fw.log.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
				}
			}
			if len(dirs) > 0 {
				return
			}
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !fw.matchesPattern(event.Name) {
		return
	}

	fw.log.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	fw.debouncer.Add(event.Name)
}

// findDirectories lists dir and its subdirectories, minus skipped ones. A
// path that is not a directory yields nothing.
func (fw *FileWatcher) findDirectories(dir string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func skipDir(name string) bool {
	return skippedDirs[name] || strings.HasPrefix(name, ".")
}

// shouldIgnore checks if a file path should be ignored
func (fw *FileWatcher) shouldIgnore(path string) bool {
	if rel, err := filepath.Rel(fw.root, path); err == nil {
		for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
			if part != "." && skipDir(part) {
				return true
			}
		}
	}

	baseName := filepath.Base(path)
	if strings.HasPrefix(baseName, ".") {
		return true
	}

	for _, pattern := range fw.ignored {
		if matched, _ := filepath.Match(pattern, baseName); matched {
			return true
		}
	}

	return false
}

// matchesPattern checks if a file matches any of the watch patterns
func (fw *FileWatcher) matchesPattern(path string) bool {
	if len(fw.patterns) == 0 {
		return true
	}

	for _, pattern := range fw.patterns {
		// "*.ts" also matches "x.d.ts" through the extension.
		if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(path, pattern[1:]) {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}

	return false
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopChan chan struct{}

	// serial keeps callbacks from overlapping when a batch takes longer
	// than the delay.
	serial sync.Mutex
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Add records a changed file and restarts the delay.
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	select {
	case <-d.stopChan:
		return
	default:
	}

	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush hands the accumulated files, sorted, to the callback. The callback
// runs without the lock held so it may take as long as it needs.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if len(d.files) == 0 || d.callback == nil {
		d.mutex.Unlock()
		return
	}
	select {
	case <-d.stopChan:
		d.mutex.Unlock()
		return
	default:
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	sort.Strings(files)
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	d.serial.Lock()
	defer d.serial.Unlock()
	callback(files)
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop stops the debouncer and waits for a callback already running.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
	d.mutex.Unlock()

	d.serial.Lock()
	defer d.serial.Unlock()
}
