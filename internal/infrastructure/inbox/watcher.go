package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

const DefaultSettleDelay = 2 * time.Second

var supportedExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".csv":  {},
}

type FileIngester interface {
	IngestFile(ctx context.Context, input ingestion.IngestFileInput) (ingestion.BatchSummary, error)
}

type Options struct {
	WatchDir    string
	ArchiveDir  string
	FailedDir   string
	SettleDelay time.Duration
	// OnResult is called after every processed file. Optional.
	OnResult func(Result)
}

// Result describes one processed file. MovedTo is empty when the file was
// left in the inbox for a later retry.
type Result struct {
	Path    string
	MovedTo string
	Summary ingestion.BatchSummary
	Err     error
}

// Watcher ingests report files dropped into a directory. A file is picked up
// once it has not changed for the settle delay, then moved to the archive
// directory, or to the failed directory when it cannot be parsed.
type Watcher struct {
	ingester FileIngester
	opts     Options
	now      func() time.Time
}

func NewWatcher(ingester FileIngester, opts Options) (*Watcher, error) {
	if ingester == nil {
		return nil, errors.New("file ingester is required")
	}
	opts.WatchDir = strings.TrimSpace(opts.WatchDir)
	if opts.WatchDir == "" {
		return nil, errors.New("watch dir is required")
	}
	if strings.TrimSpace(opts.ArchiveDir) == "" {
		opts.ArchiveDir = filepath.Join(opts.WatchDir, "archive")
	}
	if strings.TrimSpace(opts.FailedDir) == "" {
		opts.FailedDir = filepath.Join(opts.WatchDir, "failed")
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}

	for _, dir := range []string{opts.WatchDir, opts.ArchiveDir, opts.FailedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrapf(err, "create dir %s", dir)
		}
	}
	return &Watcher{ingester: ingester, opts: opts, now: time.Now}, nil
}

// Run sweeps files already present in the inbox, then processes new ones
// until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	logCtx := logging.WithAttrs(ctx, slog.String("component", "infrastructure.inbox"), slog.String("watch_dir", w.opts.WatchDir))

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "create fsnotify watcher")
	}
	defer func() { _ = fsw.Close() }()
	if err := fsw.Add(w.opts.WatchDir); err != nil {
		return errs.Wrapf(err, "watch %s", w.opts.WatchDir)
	}

	ready := make(chan string, 64)
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if timer, ok := timers[path]; ok {
			timer.Reset(w.opts.SettleDelay)
			return
		}
		timers[path] = time.AfterFunc(w.opts.SettleDelay, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, timer := range timers {
			timer.Stop()
		}
	}()

	existing, err := os.ReadDir(w.opts.WatchDir)
	if err != nil {
		return errs.Wrapf(err, "read dir %s", w.opts.WatchDir)
	}
	for _, entry := range existing {
		path := filepath.Join(w.opts.WatchDir, entry.Name())
		if !entry.IsDir() && accepts(path) {
			schedule(path)
		}
	}

	logging.Info(logCtx, "inbox watcher started", slog.Duration("settle_delay", w.opts.SettleDelay))

	for {
		select {
		case <-ctx.Done():
			logging.Info(logCtx, "inbox watcher stopped")
			return errs.Wrap(ctx.Err(), "inbox watch loop stopped")
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("fsnotify events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !accepts(event.Name) {
				continue
			}
			schedule(event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("fsnotify errors channel closed")
			}
			logging.Warn(logCtx, "inbox watcher error", slog.Any("err", errs.Loggable(err)))
		case path := <-ready:
			result := w.ProcessFile(ctx, path)
			if errors.Is(result.Err, os.ErrNotExist) {
				continue
			}
			if w.opts.OnResult != nil {
				w.opts.OnResult(result)
			}
		}
	}
}

// ProcessFile ingests one file and moves it out of the inbox. Files that hit
// a store failure or an interrupted batch stay in place.
func (w *Watcher) ProcessFile(ctx context.Context, path string) Result {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "infrastructure.inbox"), slog.String("path", path))
	result := Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		result.Err = errs.Wrap(err, "stat inbox file")
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn(logCtx, "inbox file unavailable", slog.Any("err", errs.Loggable(result.Err)))
		}
		return result
	}
	if info.IsDir() {
		result.Err = fmt.Errorf("%s is a directory", path)
		return result
	}

	file, err := os.Open(path)
	if err != nil {
		result.Err = errs.Wrap(err, "open inbox file")
		logging.Warn(logCtx, "inbox file unavailable", slog.Any("err", errs.Loggable(result.Err)))
		return result
	}
	summary, ingestErr := w.ingester.IngestFile(ctx, ingestion.IngestFileInput{
		Name:   filepath.Base(path),
		Reader: file,
	})
	_ = file.Close()
	result.Summary = summary
	result.Err = ingestErr

	var parseErr *inspection.ParseError
	var destDir string
	switch {
	case ingestErr == nil:
		destDir = w.opts.ArchiveDir
	case errors.As(ingestErr, &parseErr):
		destDir = w.opts.FailedDir
	default:
		logging.Warn(logCtx, "inbox file left for retry", slog.Any("err", errs.Loggable(ingestErr)))
		return result
	}

	moved, err := w.move(path, destDir)
	if err != nil {
		logging.Error(logCtx, "move inbox file failed", slog.Any("err", errs.Loggable(err)))
		if result.Err == nil {
			result.Err = err
		}
		return result
	}
	result.MovedTo = moved

	if ingestErr != nil {
		logging.Warn(logCtx, "inbox file rejected", slog.String("moved_to", moved), slog.Any("err", errs.Loggable(ingestErr)))
		return result
	}
	logging.Info(
		logCtx,
		"inbox file ingested",
		slog.String("batch_id", summary.BatchID),
		slog.String("moved_to", moved),
		slog.String("message", summary.Message),
	)
	return result
}

func (w *Watcher) move(path string, destDir string) (string, error) {
	base := filepath.Base(path)
	target := filepath.Join(destDir, base)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(destDir, w.now().UTC().Format("20060102T150405.000000000Z")+"_"+base)
	}
	if err := os.Rename(path, target); err != nil {
		return "", errs.Wrapf(err, "move %s to %s", path, destDir)
	}
	return target, nil
}

// accepts skips editor lock files, hidden files and unsupported extensions.
func accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(base))]
	return ok
}
