package shader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wave-engine/wave"
)

// Watcher drops cache entries as soon as their source file changes and
// reports the changed sources on Changes.
//
// Directories are watched rather than files so editors that save by
// rename-and-replace keep being tracked.
type Watcher struct {
	cache   *Cache
	fsw     *fsnotify.Watcher
	changes chan string

	mu      sync.Mutex
	sources map[string]bool
	dirs    map[string]bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts a watcher invalidating entries of cache.
func NewWatcher(cache *Cache) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: start watcher: %w", err)
	}
	w := &Watcher{
		cache:   cache,
		fsw:     fsw,
		changes: make(chan string, 64),
		sources: make(map[string]bool),
		dirs:    make(map[string]bool),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add starts tracking a source file.
func (w *Watcher) Add(source string) error {
	abs, err := filepath.Abs(source)
	if err != nil {
		return fileError("resolve", source, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fileError("watch", dir, err)
		}
		w.dirs[dir] = true
	}
	w.sources[abs] = true
	return nil
}

// AddProgram tracks every file stage of p.
func (w *Watcher) AddProgram(p *Program) error {
	var errs []error
	for _, s := range p.Stages() {
		if s.Source().IsFile() {
			errs = append(errs, w.Add(s.Source().Path()))
		}
	}
	return errors.Join(errs...)
}

// Changes delivers the absolute path of each modified source, after its cache
// entry was removed. Changes arriving while the channel is full are dropped.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Close stops the watcher and closes Changes.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.changes)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			wave.Component("Shader").Warn("watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	w.mu.Lock()
	tracked := w.sources[abs]
	w.mu.Unlock()
	if !tracked {
		return
	}

	log := wave.Component("Shader")
	if err := w.cache.Invalidate(abs); err != nil {
		log.Warn("cannot invalidate cache entry", "source", abs, "err", err)
	}
	log.Info("shader source modified", "source", abs)

	select {
	case w.changes <- abs:
	default:
		log.Warn("dropping shader change notification", "source", abs)
	}
}
