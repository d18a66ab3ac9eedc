package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rbxbridge/rbxbridge/internal/client"
	"github.com/rbxbridge/rbxbridge/internal/logger"
	"github.com/spf13/cobra"
)

const defaultDebounce = 150 * time.Millisecond

func newExecCmd(flags *globalFlags) *cobra.Command {
	var (
		watch    bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "exec <file>",
		Short: "Queue a script for the targeted place",
		Long:  "exec reads a script and queues it for the current target. Use - to read from stdin. With --watch the file is queued again every time it is saved.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client(cmd)
			if err != nil {
				return err
			}
			path := args[0]
			if watch {
				if path == "-" {
					return fmt.Errorf("--watch needs a file, not stdin")
				}
				return watchFile(cmd.Context(), cmd, c, path, debounce)
			}
			return queueFile(cmd.Context(), cmd, c, path)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "queue the file again on every save")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "ignore saves closer together than this")
	return cmd
}

func queueFile(ctx context.Context, cmd *cobra.Command, c *client.Client, path string) error {
	var (
		code []byte
		err  error
		name = filepath.Base(path)
	)
	if path == "-" {
		code, err = io.ReadAll(cmd.InOrStdin())
		name = "stdin"
	} else {
		code, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	job, err := c.Execute(ctx, string(code), name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderJob(job))
	return err
}

// watchFile queues path once and then again on every write. The parent
// directory is watched because editors often save by replacing the file.
func watchFile(ctx context.Context, cmd *cobra.Command, c *client.Client, path string, debounce time.Duration) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := queueFile(ctx, cmd, c, abs); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Infof("Watching %s", abs)

	d := newDebouncer(debounce, time.Now)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if filepath.Clean(event.Name) != abs || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !d.allow() {
				logger.Debugf("Debounced: %s", filepath.Base(abs))
				continue
			}
			if err := queueFile(ctx, cmd, c, abs); err != nil {
				logger.Errorf("Failed to queue %s: %v", filepath.Base(abs), err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// debouncer drops events arriving within window of the last accepted one.
type debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func newDebouncer(window time.Duration, now func() time.Time) *debouncer {
	return &debouncer{window: window, now: now}
}

func (d *debouncer) allow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	return true
}
