package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher turns a directory of fragment JSON files into a live sensor
// stream: file create/write becomes a fragment upsert, file removal becomes
// a fragment remove. Events are debounced because editors and copy tools
// write files in several bursts.
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	sink     Sink
	dir      string
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	known  map[string]string // path -> fragment id already delivered
	done   chan struct{}
}

// NewDirWatcher creates a watcher over the given directory
func NewDirWatcher(dir string, sink Sink, debounce time.Duration) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &DirWatcher{
		watcher:  watcher,
		sink:     sink,
		dir:      dir,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		known:    make(map[string]string),
		done:     make(chan struct{}),
	}, nil
}

// Start ingests the fragments already present, then begins watching for
// changes
func (w *DirWatcher) Start() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isFragmentFile(entry.Name()) {
			continue
		}
		w.loadFragment(filepath.Join(w.dir, entry.Name()))
	}

	go w.loop()
	return nil
}

func (w *DirWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isFragmentFile(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				w.scheduleLoad(event.Name)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.handleRemove(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sink.SessionError(err.Error())

		case <-w.done:
			return
		}
	}
}

// scheduleLoad debounces bursts of writes to the same file
func (w *DirWatcher) scheduleLoad(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.loadFragment(path)
	})
}

func (w *DirWatcher) loadFragment(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // file vanished between event and read
	}

	var fj FragmentJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return // partial write or junk file; the next write will retry
	}
	if fj.ID == "" {
		fj.ID = fragmentID(path)
	}

	w.mu.Lock()
	_, update := w.known[path]
	w.known[path] = fj.ID
	w.mu.Unlock()

	if update {
		w.sink.FragmentUpdated(fj.ToFragment())
	} else {
		w.sink.FragmentAdded(fj.ToFragment())
	}
}

func (w *DirWatcher) handleRemove(path string) {
	w.mu.Lock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
	id, known := w.known[path]
	delete(w.known, path)
	w.mu.Unlock()

	if known {
		w.sink.FragmentRemoved(id)
	}
}

// Close stops watching
func (w *DirWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func isFragmentFile(path string) bool {
	return strings.HasSuffix(path, ".json")
}

// fragmentID derives a fragment id from a file path, for files that carry
// none of their own
func fragmentID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}
