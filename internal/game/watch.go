package game

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher watches a profile directory and triggers a callback when a
// YAML file in it is written, created, removed or renamed.
type FileWatcher struct {
	Dir      string
	onChange func(string) // called with path that changed
	log      *zap.Logger

	w        *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

// NewFileWatcher creates a watcher for dir. A nil logger discards output.
func NewFileWatcher(dir string, onChange func(string), log *zap.Logger) *FileWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileWatcher{
		Dir:      dir,
		onChange: onChange,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start registers the directory and begins dispatching events in a goroutine.
func (fw *FileWatcher) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(fw.Dir); err != nil {
		_ = w.Close()
		return err
	}
	fw.w = w
	go fw.loop()
	return nil
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !isProfileFile(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				fw.log.Info("profile changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
				if fw.onChange != nil {
					fw.onChange(ev.Name)
				}
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			fw.log.Warn("profile watcher error", zap.Error(err))
		}
	}
}

// Stop terminates the watcher and waits for the dispatch goroutine.
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		if fw.w == nil {
			return
		}
		_ = fw.w.Close()
		<-fw.done
	})
}

func isProfileFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// WatchProfiles invalidates l whenever a profile file changes.
func WatchProfiles(l *Loader, log *zap.Logger) (*FileWatcher, error) {
	fw := NewFileWatcher(l.Paths().ProfileDir(), func(string) { l.Invalidate() }, log)
	if err := fw.Start(); err != nil {
		return nil, err
	}
	return fw, nil
}
