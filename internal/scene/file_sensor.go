package scene

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/fsnotify/fsnotify"
)

// FileSensor senses the content of an svg file on disk. The directory of the file
// is watched, editors commonly replace files rather than writing in place.
type FileSensor struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
	errChan chan error
	warnlog func(msg string, a ...any)
}

func NewFileSensor(path string) (*FileSensor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve svg path '%v': %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("NewFileSensor failed to create fsnotify.Watcher: %w", err)
	}
	return &FileSensor{
		path:    abs,
		watcher: w,
		changes: make(chan struct{}, 1),
		errChan: make(chan error, 1),
		warnlog: ancli.Warnf,
	}, nil
}

func (fs *FileSensor) Path() string {
	return fs.path
}

func (fs *FileSensor) Sense(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("svg file does not exist: %s", fs.path)
		}
		return "", fmt.Errorf("failed to read svg file: %w", err)
	}
	content := strings.TrimSpace(string(b))
	if !strings.Contains(content, "<svg") {
		return "", fmt.Errorf("file '%v' does not contain an svg element", fs.path)
	}
	return content, nil
}

func (fs *FileSensor) Setup(ctx context.Context) (<-chan struct{}, <-chan error, error) {
	ancli.Noticef("setting up svg file sensor for: '%v'", fs.path)
	if fs.changes == nil {
		return nil, nil, errors.New("changes channel is nil. Please create with NewFileSensor")
	}
	return fs.changes, fs.errChan, nil
}

// handleError by sending it to fs.errChan in a non-blocking way
func (fs *FileSensor) handleError(err error) {
	if err != nil {
		select {
		case fs.errChan <- err:
		default:
			fs.warnlog("Error channel full or unavailable: %v", err)
		}
	}
}

// notify coalesces changes, one pending signal is enough for the agent to re-sense.
func (fs *FileSensor) notify() {
	select {
	case fs.changes <- struct{}{}:
	default:
	}
}

func (fs *FileSensor) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != fs.path {
		return
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
		ancli.Noticef("Got svg file event: %v", ev)
		fs.notify()
	}
}

func (fs *FileSensor) Watch(ctx context.Context) error {
	dir := filepath.Dir(fs.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to get file info for path '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path '%s' is not a directory", dir)
	}
	if err := fs.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch '%v': %w", dir, err)
	}
	defer fs.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-fs.watcher.Events:
			if !open {
				return errors.New("fsnotify events channel closed")
			}
			fs.handleEvent(ev)
		case err, open := <-fs.watcher.Errors:
			if open {
				fs.handleError(err)
			}
		}
	}
}
