package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
// kind is one of EventCreated, EventUpdated, EventDeleted.
type EventCallback func(kind string, slug string)

// Watch starts an fsnotify watcher on the content directory and processes
// file change events until ctx is cancelled. It calls cb (if non-nil) after
// each index mutation. Writes that leave a post's checksum unchanged are
// ignored.
//
// Rename events trigger a debounced reconciliation pass, since fsnotify only
// reports the old name.
func Watch(ctx context.Context, db PostIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, slug string) {
		if cb != nil {
			cb(kind, slug)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(ev.Name) != root {
				continue
			}
			slug, ok := storage.SlugOf(filepath.Base(ev.Name))
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				prev, _ := db.GetChecksum(slug)
				data, readErr := store.Read(slug)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("slug", slug), slog.String("error", readErr.Error()))
					continue
				}
				if !storage.Changed(prev, data) {
					continue
				}
				if idxErr := indexFile(db, slug, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("slug", slug), slog.String("error", idxErr.Error()))
					continue
				}
				kind := EventUpdated
				if prev == "" {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("slug", slug), slog.String("op", kind))
				notify(kind, slug)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeletePost(slug); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("slug", slug), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("slug", slug))
				notify(EventDeleted, slug)

			case ev.Op&fsnotify.Rename != 0:
				if delErr := db.DeletePost(slug); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("slug", slug), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("slug", slug))
					notify(EventDeleted, slug)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a file on disk and indexes files
// that are new or changed.
func reconcile(db PostIndex, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	files, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Slug] = struct{}{}
	}

	for slug := range checksums {
		if _, ok := disk[slug]; ok {
			continue
		}
		if delErr := db.DeletePost(slug); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("slug", slug))
			notify(EventDeleted, slug)
		}
	}

	for slug := range disk {
		data, readErr := store.Read(slug)
		if readErr != nil {
			continue
		}
		prev, indexed := checksums[slug]
		if indexed && !storage.Changed(prev, data) {
			continue
		}
		if idxErr := indexFile(db, slug, data); idxErr != nil {
			continue
		}
		kind := EventUpdated
		if !indexed {
			kind = EventCreated
		}
		logger.Debug("reconcile: indexed", slog.String("slug", slug), slog.String("op", kind))
		notify(kind, slug)
	}
}
