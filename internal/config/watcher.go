package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// BundleWatcher watches the selector and instruction bundle files for
// changes and hot-swaps them between runs. Adapted from
// internal/core/mangle_watcher.go's debounced fsnotify loop — a running
// PublishContext pins the bundle snapshot it started with (§5), so a swap
// here only affects runs that start afterward.
type BundleWatcher struct {
	mu             sync.RWMutex
	watcher        *fsnotify.Watcher
	selectorPath   string
	instructionPath string
	selectors      *SelectorBundle
	instructions   *InstructionBundle
	debounce       time.Duration
	lastEvent      map[string]time.Time
	log            *zap.Logger
	stopCh         chan struct{}
	doneCh         chan struct{}
}

func NewBundleWatcher(selectorPath, instructionPath string, selectors *SelectorBundle, instructions *InstructionBundle, log *zap.Logger) (*BundleWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	bw := &BundleWatcher{
		watcher:         w,
		selectorPath:    selectorPath,
		instructionPath: instructionPath,
		selectors:       selectors,
		instructions:    instructions,
		debounce:        500 * time.Millisecond,
		lastEvent:       make(map[string]time.Time),
		log:             log,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
	if err := w.Add(selectorPath); err != nil {
		return nil, err
	}
	if err := w.Add(instructionPath); err != nil {
		return nil, err
	}
	return bw, nil
}

// Start runs the watch loop until Stop is called.
func (bw *BundleWatcher) Start() {
	go func() {
		defer close(bw.doneCh)
		for {
			select {
			case <-bw.stopCh:
				return
			case ev, ok := <-bw.watcher.Events:
				if !ok {
					return
				}
				bw.handle(ev)
			case err, ok := <-bw.watcher.Errors:
				if !ok {
					return
				}
				bw.log.Warn("bundle watcher error", zap.Error(err))
			}
		}
	}()
}

func (bw *BundleWatcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	bw.mu.Lock()
	last, seen := bw.lastEvent[ev.Name]
	if seen && time.Since(last) < bw.debounce {
		bw.mu.Unlock()
		return
	}
	bw.lastEvent[ev.Name] = time.Now()
	bw.mu.Unlock()

	switch ev.Name {
	case bw.selectorPath:
		if fresh, err := LoadSelectorBundle(bw.selectorPath); err == nil {
			bw.mu.Lock()
			bw.selectors = fresh
			bw.mu.Unlock()
			bw.log.Info("reloaded selector bundle", zap.String("path", ev.Name))
		} else {
			bw.log.Warn("selector bundle reload failed, keeping previous snapshot", zap.Error(err))
		}
	case bw.instructionPath:
		if fresh, err := LoadInstructionBundle(bw.instructionPath); err == nil {
			bw.mu.Lock()
			bw.instructions = fresh
			bw.mu.Unlock()
			bw.log.Info("reloaded instruction bundle", zap.String("path", ev.Name))
		} else {
			bw.log.Warn("instruction bundle reload failed, keeping previous snapshot", zap.Error(err))
		}
	}
}

// Snapshot returns the current bundle pair for a new run to pin.
func (bw *BundleWatcher) Snapshot() (*SelectorBundle, *InstructionBundle) {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	return bw.selectors, bw.instructions
}

func (bw *BundleWatcher) Stop() {
	close(bw.stopCh)
	<-bw.doneCh
	_ = bw.watcher.Close()
}
