// Package frameregistry implements the frame-info registry of spec §4.1:
// a bidirectional index from frame number, request, and buffer to the
// FrameInfo that binds them for the lifetime of one in-flight frame.
//
// Grounded on the arena+index pattern spec §9 calls for in place of the
// original's cyclic FrameInfo<->Request back-references: FrameInfo lives
// in a dense map keyed by frame number, and Request never carries a
// pointer back to its FrameInfo — reverse lookups always go through the
// Registry.
package frameregistry

import (
	"fmt"

	"github.com/camerastack/isppipeline/internal/bufferpool"
	"github.com/camerastack/isppipeline/internal/corestate"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

// Registry is the single-camera FrameInfo index. It owns no buffers
// itself; it borrows from and returns to the param/stat pools it was
// constructed with.
type Registry struct {
	frames    map[uint64]*camcore.FrameInfo
	paramPool *bufferpool.Pool
	statPool  *bufferpool.Pool
}

// New creates an empty registry bound to the given free pools.
func New(paramPool, statPool *bufferpool.Pool) *Registry {
	return &Registry{
		frames:    make(map[uint64]*camcore.FrameInfo),
		paramPool: paramPool,
		statPool:  statPool,
	}
}

// Create dequeues one free param and one free stat buffer, resolves the
// video buffer from the request's stream binding, and installs a new
// FrameInfo under frame. On any failure every buffer already dequeued
// is put back at the tail of its pool, so pool occupancy is unchanged.
func (r *Registry) Create(frame uint64, req camcore.Request) (*camcore.FrameInfo, error) {
	const op = "frameregistry.create"

	paramBuf, ok := r.paramPool.Dequeue()
	if !ok {
		return nil, corestate.New(op, corestate.KindUnderrun, fmt.Errorf("param pool empty for frame %d", frame))
	}

	statBuf, ok := r.statPool.Dequeue()
	if !ok {
		r.paramPool.Enqueue(paramBuf)
		return nil, corestate.New(op, corestate.KindUnderrun, fmt.Errorf("stat pool empty for frame %d", frame))
	}

	videoBuf, ok := req.StreamBuffer()
	if !ok {
		r.paramPool.Enqueue(paramBuf)
		r.statPool.Enqueue(statBuf)
		return nil, corestate.New(op, corestate.KindInvalidStream, fmt.Errorf("request %s has no stream buffer", req.ID()))
	}

	info := &camcore.FrameInfo{
		Frame:       frame,
		Request:     req,
		ParamBuffer: paramBuf,
		StatBuffer:  statBuf,
		VideoBuffer: videoBuf,
	}
	r.frames[frame] = info

	return info, nil
}

// Destroy returns a frame's param and stat buffers to their free pools
// and removes it from the registry. Together with DiscardAll it is how
// param/stat buffers held by a frame re-enter circulation (§3 invariant 4).
func (r *Registry) Destroy(frame uint64) error {
	info, ok := r.frames[frame]
	if !ok {
		return corestate.New("frameregistry.destroy", corestate.KindNotFound, fmt.Errorf("frame %d", frame))
	}

	r.paramPool.Enqueue(info.ParamBuffer)
	r.statPool.Enqueue(info.StatBuffer)
	delete(r.frames, frame)

	return nil
}

// FindByFrame looks up a FrameInfo by frame number. Side-effect-free.
func (r *Registry) FindByFrame(frame uint64) (*camcore.FrameInfo, bool) {
	info, ok := r.frames[frame]
	return info, ok
}

// FindByRequest scans live entries for the one owned by req. Side-effect-free.
func (r *Registry) FindByRequest(req camcore.Request) (*camcore.FrameInfo, bool) {
	for _, info := range r.frames {
		if info.Request == req {
			return info, true
		}
	}
	return nil, false
}

// FindByBuffer scans live entries for any of the three buffer slots
// matching buf. O(n) in the number of in-flight frames, which is
// bounded by the pool capacity (N+1) and therefore acceptable. The
// controller's kernel buffer-completion handlers look frames up this
// way; its IPA-action paths use FindByFrame (§4.1).
func (r *Registry) FindByBuffer(buf camcore.Buffer) (*camcore.FrameInfo, bool) {
	for _, info := range r.frames {
		if info.ParamBuffer == buf || info.StatBuffer == buf || info.VideoBuffer == buf {
			return info, true
		}
	}
	return nil, false
}

// Len reports the number of in-flight frames.
func (r *Registry) Len() int {
	return len(r.frames)
}

// DiscardAll drops every in-flight FrameInfo without completing their
// requests, returning their param and stat buffers to the free pools,
// matching the coarse-grained stop() cancellation of §5. It returns
// the discarded entries for logging.
func (r *Registry) DiscardAll() []*camcore.FrameInfo {
	discarded := make([]*camcore.FrameInfo, 0, len(r.frames))
	for _, info := range r.frames {
		r.paramPool.Enqueue(info.ParamBuffer)
		r.statPool.Enqueue(info.StatBuffer)
		discarded = append(discarded, info)
	}
	r.frames = make(map[uint64]*camcore.FrameInfo)
	return discarded
}
