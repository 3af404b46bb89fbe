// Package bufferpool implements the FIFO free pools of param and stat
// buffers described in spec §3 ("FreePool"). A pool holds the buffers
// not currently owned by any in-flight FrameInfo.
package bufferpool

import "github.com/camerastack/isppipeline/pkg/camcore"

// Pool is a FIFO queue of currently-free buffer references for one
// metadata stream (param or stat). It is not safe for concurrent use;
// like the rest of the core it is driven from a single event thread.
type Pool struct {
	free     []camcore.Buffer
	capacity int
}

// New creates a pool pre-filled with buffers, fixing its capacity at
// len(buffers). Capacity never changes after construction: allocateBuffers
// builds exactly one pool per metadata stream at N+1 buffers (§3).
func New(buffers []camcore.Buffer) *Pool {
	free := make([]camcore.Buffer, len(buffers))
	copy(free, buffers)
	return &Pool{free: free, capacity: len(buffers)}
}

// Dequeue removes and returns the buffer at the head of the pool.
// ok is false if the pool is empty (a buffer underrun, §3).
func (p *Pool) Dequeue() (buf camcore.Buffer, ok bool) {
	if len(p.free) == 0 {
		return nil, false
	}
	buf = p.free[0]
	p.free = p.free[1:]
	return buf, true
}

// Enqueue returns a buffer to the tail of the pool. It is the sole
// mechanism by which a param/stat buffer re-enters circulation,
// triggered by FrameInfo destruction (§3 invariant 4).
func (p *Pool) Enqueue(buf camcore.Buffer) {
	p.free = append(p.free, buf)
}

// Len reports the number of currently-free buffers.
func (p *Pool) Len() int {
	return len(p.free)
}

// Capacity reports the pool's fixed size (in-flight + free == Capacity
// at all times, per spec §8 invariant 2).
func (p *Pool) Capacity() int {
	return p.capacity
}

// Drain empties the pool and returns every buffer it held, used by
// freeBuffers (§4.6) before releasing the underlying kernel buffers.
func (p *Pool) Drain() []camcore.Buffer {
	drained := p.free
	p.free = nil
	return drained
}
