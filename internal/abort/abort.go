// Package abort implements the single-level soft-abort signal plumbing
// described in §4.7/§7: the first SIGINT under --softabort sets a flag that
// hashing and byte-confirmation loops poll every CHECK_MINIMUM chunks; a
// second SIGINT, or any SIGINT without --softabort, terminates immediately.
package abort

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Controller tracks the soft-abort flag for one scan.
type Controller struct {
	enabled  bool
	flagged  atomic.Bool
	sigCh    chan os.Signal
	stopFunc func()
	onFatal  func()
}

// New returns a Controller. softAbortEnabled mirrors --softabort; onFatal is
// invoked (and must not return) when a second SIGINT, or any SIGINT while
// soft-abort isn't enabled, arrives — the caller typically releases the
// arena and calls os.Exit there.
func New(softAbortEnabled bool, onFatal func()) *Controller {
	return &Controller{enabled: softAbortEnabled, onFatal: onFatal}
}

// Watch installs the SIGINT handler. Call once, near process start; Stop
// removes it.
func (c *Controller) Watch() {
	c.sigCh = make(chan os.Signal, 1)
	signal.Notify(c.sigCh, syscall.SIGINT)
	go func() {
		for range c.sigCh {
			if !c.enabled || c.flagged.Load() {
				if c.onFatal != nil {
					c.onFatal()
				}
				return
			}
			c.flagged.Store(true)
		}
	}()
}

// Stop removes the SIGINT handler.
func (c *Controller) Stop() {
	if c.sigCh != nil {
		signal.Stop(c.sigCh)
		close(c.sigCh)
	}
}

// Aborted reports whether a soft-abort has been requested. Hashing and
// byte-confirmation loops call this every CHECK_MINIMUM chunks.
func (c *Controller) Aborted() bool {
	return c.flagged.Load()
}
