package compose

import (
	"context"
	"sync"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// ErrSuperseded is returned by a preview render that a newer one replaced.
var ErrSuperseded = errors.New(errors.ErrCodeSuperseded, "render superseded by a newer request")

// Previewer runs at most one render at a time on behalf of a live preview.
// Starting a render cancels the one in flight, which then returns
// ErrSuperseded. It is safe for concurrent use.
type Previewer struct {
	c *Compositor

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewPreviewer returns a Previewer rendering with c.
func NewPreviewer(c *Compositor) *Previewer {
	return &Previewer{c: c}
}

// Render supersedes any in-flight render and runs req.
func (p *Previewer) Render(ctx context.Context, req Request) (*Result, error) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	p.cancel = cancel
	p.mu.Unlock()

	res, err := p.c.Do(rctx, req)

	p.mu.Lock()
	superseded := p.seq != seq
	if !superseded {
		p.cancel = nil
	}
	p.mu.Unlock()

	if superseded {
		return nil, ErrSuperseded
	}
	return res, err
}

// Cancel aborts the in-flight render, if any.
func (p *Previewer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.seq++
}
