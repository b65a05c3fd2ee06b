package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"briclab/afm/pkg/log"
	"briclab/afm/pkg/semaphore"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
)

const (
	acquireTimeout = time.Minute
	settleInterval = 100 * time.Millisecond
	settleTimeout  = 10 * time.Second
)

// Watch monitors a directory and processes every .ibw file created or
// updated in it. At most workers files are processed concurrently.
// Watch returns when the context is cancelled, after in-flight files
// have finished.
func (p *Pipeline) Watch(ctx context.Context, dir string, workers int) error {
	if workers < 1 {
		return fmt.Errorf("workers must be at least 1, is %d", workers)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %s", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %s", dir, err)
	}
	log.InfoMsg("Watching %s\n", dir)

	sem := semaphore.New(workers, acquireTimeout)

	var wg sync.WaitGroup
	defer wg.Wait()

	var mu sync.Mutex
	inFlight := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".ibw") {
				continue
			}

			mu.Lock()
			if inFlight[event.Name] {
				mu.Unlock()
				continue
			}
			inFlight[event.Name] = true
			mu.Unlock()

			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				defer func() {
					mu.Lock()
					delete(inFlight, path)
					mu.Unlock()
				}()

				if err := p.watchOne(ctx, sem, path); err != nil {
					if ctx.Err() == nil {
						log.ErrorMsg("%s: %s\n", path, err)
					}
					return
				}
				log.InfoMsg("Processed %s\n", path)
			}(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.ErrorMsg("watching: %s\n", err)
		}
	}
}

func (p *Pipeline) watchOne(ctx context.Context, sem *semaphore.FileSemaphore, path string) error {
	if err := sem.Acquire(ctx); err != nil {
		return fmt.Errorf("acquiring slot: %s", err)
	}
	defer sem.Release()

	size, err := waitSettled(ctx, path)
	if err != nil {
		return fmt.Errorf("waiting for file: %s", err)
	}
	log.InfoMsg("Processing %s (%s)\n", path, humanize.Bytes(uint64(size)))

	return p.ProcessFile(ctx, path)
}

// waitSettled waits until the file stops growing, so half-written
// instrument files are not parsed.
func waitSettled(ctx context.Context, path string) (int64, error) {
	deadline := time.Now().Add(settleTimeout)

	var last int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("stat: %s", err)
		}

		if info.Size() == last && info.Size() > 0 {
			return info.Size(), nil
		}
		last = info.Size()

		if time.Now().After(deadline) {
			return 0, fmt.Errorf("file did not settle within %v", settleTimeout)
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(settleInterval):
		}
	}
}
