// package buffer provides the byte queue between a MIDI transport and the
// processing loop.
package buffer

import (
	"sync"
)

// Ring is a bounded FIFO of bytes. When it is full, writing drops the oldest
// byte: on a serial MIDI link there is no way to ask the sender to slow down.
// It is safe for one goroutine to write while another reads.
type Ring struct {
	mu      sync.Mutex
	buf     []byte
	readp   int
	count   int
	dropped uint64
}

// NewRing allocates a ring holding up to size bytes.
func NewRing(size int) *Ring {
	return &Ring{
		buf: make([]byte, max(size, 1)),
	}
}

// WriteByte queues b, overwriting the oldest byte if the ring is full. It
// never fails, the error is there to satisfy io.ByteWriter.
func (r *Ring) WriteByte(b byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(b)
	return nil
}

// Write queues all of p, see WriteByte.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range p {
		r.put(b)
	}
	return len(p), nil
}

func (r *Ring) put(b byte) {
	if r.count == len(r.buf) {
		// full, drop the oldest.
		r.readp = (r.readp + 1) % len(r.buf)
		r.count--
		r.dropped++
	}
	r.buf[(r.readp+r.count)%len(r.buf)] = b
	r.count++
}

// Next pops the oldest byte. ok is false when the ring is empty.
func (r *Ring) Next() (b byte, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return 0, false
	}
	b = r.buf[r.readp]
	r.readp = (r.readp + 1) % len(r.buf)
	r.count--
	return b, true
}

// Len returns the number of queued bytes.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Dropped returns how many bytes have been lost to overruns.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
