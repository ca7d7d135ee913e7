package assets

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/parallax/engine/core"
)

// ShaderWatcher watches a directory of compiled shaders and reports when a
// .spv file is written, so the renderer can rebuild its pipeline without a
// restart.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	changed chan string
	done    chan struct{}
}

func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	sw := &ShaderWatcher{
		watcher: watcher,
		changed: make(chan string, 8),
		done:    make(chan struct{}),
	}
	go sw.run()

	core.LogInfo("Watching shader directory %s for changes.", dir)
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".spv" {
				continue
			}
			core.LogInfo("Shader changed on disk: %s", event.Name)
			select {
			case sw.changed <- event.Name:
			default:
				// A reload is already pending; coalesce.
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("shader watcher error: %v", err)
		case <-sw.done:
			return
		}
	}
}

// Changed returns a channel that receives the path of each rewritten
// shader binary.
func (sw *ShaderWatcher) Changed() <-chan string {
	return sw.changed
}

func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
