package fluke

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// fakePort is a scripted serial port. Each complete command written to it
// is passed to respond, and the returned chunks are queued for reading.
type fakePort struct {
	mu      sync.Mutex
	written bytes.Buffer
	partial string
	pending [][]byte
	respond func(cmd string) []string
	closed  bool

	readTimeout time.Duration
	dtr, rts    bool
	dtrErr      error
	closeErr    error
	readErr     error
}

func newFakePort(respond func(cmd string) []string) *fakePort {
	return &fakePort{respond: respond}
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if p.readErr != nil {
		p.mu.Unlock()
		return 0, p.readErr
	}
	if len(p.pending) == 0 {
		p.mu.Unlock()
		// Behave like a port read that timed out with nothing available.
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	chunk := p.pending[0]
	n := copy(b, chunk)
	if n < len(chunk) {
		p.pending[0] = chunk[n:]
	} else {
		p.pending = p.pending[1:]
	}
	p.mu.Unlock()
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("port closed")
	}
	p.written.Write(b)
	p.partial += string(b)
	for {
		i := strings.IndexByte(p.partial, '\r')
		if i < 0 {
			break
		}
		cmd := p.partial[:i]
		p.partial = p.partial[i+1:]
		if p.respond != nil {
			for _, c := range p.respond(cmd) {
				p.pending = append(p.pending, []byte(c))
			}
		}
	}
	return len(b), nil
}

func (p *fakePort) Drain() error { return nil }

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.closeErr
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	p.readTimeout = t
	p.mu.Unlock()
	return nil
}

func (p *fakePort) SetDTR(v bool) error {
	if p.dtrErr != nil {
		return p.dtrErr
	}
	p.dtr = v
	return nil
}

func (p *fakePort) SetRTS(v bool) error {
	p.rts = v
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
	return nil
}

func (p *fakePort) ResetOutputBuffer() error { return nil }

func (p *fakePort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

func (p *fakePort) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// opener returns an OpenFunc handing out port and recording the mode.
type opener struct {
	mu    sync.Mutex
	port  Port
	err   error
	calls int
	name  string
	mode  serial.Mode
}

func (o *opener) Open(name string, mode *serial.Mode) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.name = name
	o.mode = *mode
	if o.err != nil {
		return nil, o.err
	}
	return o.port, nil
}
