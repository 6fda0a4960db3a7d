package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

// devEvent carries a freshly read image, or the error that prevented
// reading it.
type devEvent struct {
	image []byte
	err   error
}

// imageWatcher rereads an image file whenever it changes on disk.
type imageWatcher struct {
	Events <-chan devEvent

	watcher *fsnotify.Watcher
	stop    chan bool
}

func watchImage(imageFile string) (*imageWatcher, error) {
	imageFile = filepath.Clean(imageFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(filepath.Dir(imageFile)); err != nil {
		watcher.Close()
		return nil, err
	}
	var (
		events = make(chan devEvent)
		w      = &imageWatcher{Events: events, watcher: watcher, stop: make(chan bool)}
	)
	go w.loop(imageFile, events)
	return w, nil
}

func (w *imageWatcher) loop(imageFile string, events chan<- devEvent) {
	var reload <-chan time.Time
	for {
		var ev devEvent
		select {
		case <-reload:
			// Editors and assemblers write in bursts; read once it settles.
			reload = nil
			ev.image, ev.err = os.ReadFile(imageFile)
		case fe, ok := <-w.watcher.Event:
			if !ok {
				return
			}
			if filepath.Clean(fe.Name) == imageFile && !fe.IsAttrib() && !fe.IsDelete() {
				reload = time.After(100 * time.Millisecond)
			}
			continue
		case err, ok := <-w.watcher.Error:
			if !ok {
				return
			}
			ev.err = err
		case <-w.stop:
			return
		}
		select {
		case events <- ev:
		case <-w.stop:
			return
		}
	}
}

// Close stops watching.
func (w *imageWatcher) Close() error {
	close(w.stop)
	return w.watcher.Close()
}
