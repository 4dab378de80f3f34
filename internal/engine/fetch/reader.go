package fetch

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/konst007/chgk/internal/engine/types"
)

// idleTimeoutReader aborts the request when a single Read blocks longer than
// timeout. The clock only runs while a Read is in flight.
type idleTimeoutReader struct {
	rc      io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleTimeoutReader(rc io.ReadCloser, timeout time.Duration, abort context.CancelFunc) *idleTimeoutReader {
	r := &idleTimeoutReader{rc: rc, timeout: timeout}
	r.timer = time.AfterFunc(timeout, func() {
		r.expired.Store(true)
		abort()
	})
	r.timer.Stop()
	return r
}

func (r *idleTimeoutReader) Read(p []byte) (int, error) {
	r.timer.Reset(r.timeout)
	n, err := r.rc.Read(p)
	r.timer.Stop()
	if err != nil && err != io.EOF && r.expired.Load() {
		return n, types.ErrReadTimeout
	}
	return n, err
}

func (r *idleTimeoutReader) Close() error {
	r.timer.Stop()
	return r.rc.Close()
}

// countingReader tracks how many bytes the decoder has consumed.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

func (c *countingReader) Count() int64 {
	return c.n.Load()
}

// percentOf maps consumed bytes to a parse percentage. Unknown lengths
// report 0; 100 is reserved for ParseComplete.
func percentOf(read, total int64) int {
	if total <= 0 || read <= 0 {
		return 0
	}
	p := int(read * 100 / total)
	if p > 99 {
		p = 99
	}
	return types.ClampPercent(p)
}
