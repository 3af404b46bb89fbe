package frameregistry

import (
	"testing"

	"github.com/camerastack/isppipeline/internal/bufferpool"
	"github.com/camerastack/isppipeline/internal/corestate"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

type testBuffer struct{ index int }

func (b testBuffer) Index() int { return b.index }

type testRequest struct {
	id     string
	buf    camcore.Buffer
	hasBuf bool
}

func (r *testRequest) ID() string                   { return r.id }
func (r *testRequest) Controls() camcore.ControlList { return nil }
func (r *testRequest) StreamBuffer() (camcore.Buffer, bool) {
	return r.buf, r.hasBuf
}
func (r *testRequest) SetMetadata(camcore.ControlList) {}
func (r *testRequest) HasPendingBuffers() bool         { return true }

func newPools(n int) (*bufferpool.Pool, *bufferpool.Pool) {
	param := make([]camcore.Buffer, n)
	stat := make([]camcore.Buffer, n)
	for i := 0; i < n; i++ {
		param[i] = testBuffer{i}
		stat[i] = testBuffer{i}
	}
	return bufferpool.New(param), bufferpool.New(stat)
}

func TestCreateBindsAllThreeBuffers(t *testing.T) {
	paramPool, statPool := newPools(2)
	reg := New(paramPool, statPool)
	req := &testRequest{id: "r0", buf: testBuffer{7}, hasBuf: true}

	info, err := reg.Create(0, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if info.ParamBuffer == nil || info.StatBuffer == nil || info.VideoBuffer == nil {
		t.Fatalf("Create() left a buffer slot unset: %+v", info)
	}
	if paramPool.Len() != 1 || statPool.Len() != 1 {
		t.Errorf("pools not drained by one: param=%d stat=%d", paramPool.Len(), statPool.Len())
	}
}

func TestCreateUnderrunRollsBackParamOnStatMiss(t *testing.T) {
	paramPool, statPool := newPools(1)
	statPool.Dequeue() // drain stat pool so the second dequeue fails
	reg := New(paramPool, statPool)
	req := &testRequest{id: "r0", buf: testBuffer{0}, hasBuf: true}

	_, err := reg.Create(0, req)
	if !corestate.Is(err, corestate.KindUnderrun) {
		t.Fatalf("Create() error = %v, want KindUnderrun", err)
	}
	if paramPool.Len() != 1 {
		t.Errorf("param buffer not rolled back: pool len = %d, want 1", paramPool.Len())
	}
}

func TestCreateInvalidStreamRollsBackBothPools(t *testing.T) {
	paramPool, statPool := newPools(1)
	reg := New(paramPool, statPool)
	req := &testRequest{id: "r0", hasBuf: false}

	_, err := reg.Create(0, req)
	if !corestate.Is(err, corestate.KindInvalidStream) {
		t.Fatalf("Create() error = %v, want KindInvalidStream", err)
	}
	if paramPool.Len() != 1 || statPool.Len() != 1 {
		t.Errorf("pools not fully rolled back: param=%d stat=%d", paramPool.Len(), statPool.Len())
	}
}

func TestDestroyReturnsBuffersAndRemovesEntry(t *testing.T) {
	paramPool, statPool := newPools(1)
	reg := New(paramPool, statPool)
	req := &testRequest{id: "r0", buf: testBuffer{0}, hasBuf: true}

	reg.Create(0, req)
	if err := reg.Destroy(0); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if paramPool.Len() != 1 || statPool.Len() != 1 {
		t.Errorf("buffers not returned: param=%d stat=%d", paramPool.Len(), statPool.Len())
	}
	if _, ok := reg.FindByFrame(0); ok {
		t.Errorf("frame still present after Destroy")
	}
}

func TestDestroyNotFound(t *testing.T) {
	paramPool, statPool := newPools(1)
	reg := New(paramPool, statPool)

	err := reg.Destroy(99)
	if !corestate.Is(err, corestate.KindNotFound) {
		t.Fatalf("Destroy() error = %v, want KindNotFound", err)
	}
}

func TestFindByRequestAndByBuffer(t *testing.T) {
	paramPool, statPool := newPools(1)
	reg := New(paramPool, statPool)
	req := &testRequest{id: "r0", buf: testBuffer{42}, hasBuf: true}

	info, _ := reg.Create(3, req)

	if got, ok := reg.FindByRequest(req); !ok || got != info {
		t.Errorf("FindByRequest() = %v, %v", got, ok)
	}
	if got, ok := reg.FindByBuffer(testBuffer{42}); !ok || got != info {
		t.Errorf("FindByBuffer(video) = %v, %v", got, ok)
	}
	if got, ok := reg.FindByBuffer(info.ParamBuffer); !ok || got != info {
		t.Errorf("FindByBuffer(param) = %v, %v", got, ok)
	}
}

func TestDiscardAllClearsAndReturnsBuffers(t *testing.T) {
	paramPool, statPool := newPools(1)
	reg := New(paramPool, statPool)
	req := &testRequest{id: "r0", buf: testBuffer{0}, hasBuf: true}

	reg.Create(0, req)
	discarded := reg.DiscardAll()

	if len(discarded) != 1 {
		t.Fatalf("DiscardAll() returned %d entries, want 1", len(discarded))
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after DiscardAll, want 0", reg.Len())
	}
	if paramPool.Len() != 1 {
		t.Errorf("DiscardAll must return buffers to the pool, param pool len = %d, want 1", paramPool.Len())
	}
}
