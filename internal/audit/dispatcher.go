package audit

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher forwards events to a sink from one background goroutine, so a
// slow sink never sits on the credential path unless DropIfFull is false and
// the buffer is exhausted.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher returns nil when cfg.Enabled is false; a nil Dispatcher is
// safe to use and discards everything.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	ctx := context.Background()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(ctx, event)
		case <-d.done:
			// drain what was accepted before Close
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(ctx, event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.done:
	}
}

// Close flushes buffered events and closes the sink when it is an io.Closer.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	var err error
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
		if c, ok := d.sink.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
