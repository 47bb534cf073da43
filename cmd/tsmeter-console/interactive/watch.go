package interactive

import (
	"context"
	"fmt"
	"time"
)

// cmdWatch starts or stops background polling of the current session.
func (c *Console) cmdWatch(ctx context.Context, args []string) {
	if len(args) > 0 && args[0] == "stop" {
		if c.watching() == "" {
			fmt.Fprintln(c.out, "Watch not running")
			return
		}
		c.stopWatch()
		fmt.Fprintln(c.out, "Watch stopped")
		return
	}

	if id := c.watching(); id != "" {
		fmt.Fprintf(c.out, "Already watching %s (watch stop ends it)\n", id)
		return
	}
	id, ok := c.target(nil)
	if !ok {
		return
	}

	interval := DefaultWatchInterval
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil || d <= 0 {
			fmt.Fprintf(c.out, "Invalid interval: %s (e.g. 500ms, 2s)\n", args[0])
			return
		}
		interval = d
	}

	fmt.Fprintf(c.out, "Watching %s every %s\n", id, interval)
	c.startWatch(ctx, id, interval)
}

// watching returns the watched session, or "" when no watch runs.
func (c *Console) watching() string {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if c.watchCancel == nil {
		return ""
	}
	return c.watchID
}

func (c *Console) startWatch(ctx context.Context, id string, interval time.Duration) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.watchCancel = cancel
	c.watchDone = done
	c.watchID = id

	go func() {
		defer close(done)
		c.watchLoop(watchCtx, id, interval)

		// A failed reading ends the watch on its own.
		c.watchMu.Lock()
		if c.watchDone == done {
			c.watchCancel, c.watchDone, c.watchID = nil, nil, ""
			cancel()
		}
		c.watchMu.Unlock()
	}()
}

// stopWatch cancels the watch and waits for it to finish.
func (c *Console) stopWatch() {
	c.watchMu.Lock()
	cancel, done := c.watchCancel, c.watchDone
	c.watchCancel, c.watchDone, c.watchID = nil, nil, ""
	c.watchMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Console) watchLoop(ctx context.Context, id string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m, err := c.sessions.Measurement(ctx, id)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			fmt.Fprintf(c.out, "\n[%s] %s: %v (watch stopped)\n", time.Now().Format("15:04:05"), id, err)
			c.refresh()
			return
		default:
			fmt.Fprintf(c.out, "\n[%s] %s: %s\n", time.Now().Format("15:04:05.000"), id, m)
			c.refresh()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
