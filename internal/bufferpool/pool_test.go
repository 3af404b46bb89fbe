package bufferpool

import (
	"testing"

	"github.com/camerastack/isppipeline/pkg/camcore"
)

type testBuffer struct{ index int }

func (b testBuffer) Index() int { return b.index }

func buffers(n int) []camcore.Buffer {
	out := make([]camcore.Buffer, n)
	for i := range out {
		out[i] = testBuffer{index: i}
	}
	return out
}

func TestDequeueFIFOOrder(t *testing.T) {
	p := New(buffers(3))

	for i := 0; i < 3; i++ {
		buf, ok := p.Dequeue()
		if !ok {
			t.Fatalf("Dequeue() unexpectedly empty at i=%d", i)
		}
		if buf.(testBuffer).index != i {
			t.Errorf("Dequeue() = %v, want index %d", buf, i)
		}
	}

	if _, ok := p.Dequeue(); ok {
		t.Errorf("Dequeue() on empty pool should return ok=false")
	}
}

func TestEnqueueReturnsToTail(t *testing.T) {
	p := New(buffers(1))

	buf, _ := p.Dequeue()
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after dequeue", p.Len())
	}

	p.Enqueue(buf)
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after enqueue", p.Len())
	}
}

func TestCapacityFixedAtConstruction(t *testing.T) {
	p := New(buffers(2))
	if p.Capacity() != 2 {
		t.Fatalf("Capacity() = %d, want 2", p.Capacity())
	}

	buf, _ := p.Dequeue()
	if p.Capacity() != 2 {
		t.Errorf("Capacity() changed after Dequeue: got %d", p.Capacity())
	}
	p.Enqueue(buf)
	if p.Capacity() != 2 {
		t.Errorf("Capacity() changed after Enqueue: got %d", p.Capacity())
	}
}

func TestDrainEmptiesPool(t *testing.T) {
	p := New(buffers(2))

	drained := p.Drain()
	if len(drained) != 2 {
		t.Fatalf("Drain() returned %d buffers, want 2", len(drained))
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d after Drain, want 0", p.Len())
	}
}
