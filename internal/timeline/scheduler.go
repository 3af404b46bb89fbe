// Package timeline implements the time/frame-indexed action queue of
// spec §4.2: it delays sensor-control application, parameter queueing,
// and statistics signalling to the correct frame slots, and estimates
// each frame's start-of-exposure (SOE) from the kernel's DMA-end
// timestamp plus the IPA-reported SOE offset.
package timeline

import (
	"fmt"
	"time"

	"github.com/camerastack/isppipeline/internal/corestate"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

// Delay configures one action type's dispatch timing (§4.2).
//
// FrameOffset == -1 means "schedule relative to the most recent frame":
// the reference event is the wall-clock time ScheduleAction was called.
// FrameOffset == 0 means "fire for frame N when the N-th SOE is
// observed": the reference event is that frame's estimated SOE.
type Delay struct {
	FrameOffset int
	TimeDelay   time.Duration
}

// DefaultDelays returns the rkisp1-style defaults named in spec §4.2.
func DefaultDelays() map[camcore.ActionType]Delay {
	return map[camcore.ActionType]Delay{
		camcore.ActionSetSensor:    {FrameOffset: -1, TimeDelay: 5 * time.Millisecond},
		camcore.ActionSOE:          {FrameOffset: 0},
		camcore.ActionQueueBuffers: {FrameOffset: -1, TimeDelay: 10 * time.Millisecond},
	}
}

type pendingAction struct {
	action   camcore.TimelineAction
	fireAt   time.Time
	resolved bool // false: still waiting on this frame's SOE
}

// Scheduler is the per-camera timeline. It holds no kernel or IPA
// references: ScheduleAction and NotifyStartOfExposure return the
// actions that became ready to run so the controller can execute them
// against its own collaborators.
type Scheduler struct {
	delays    map[camcore.ActionType]Delay
	pending   []pendingAction
	soeTimes  map[uint64]time.Time
	soeOffset time.Duration
	now       func() time.Time
}

// New builds a Scheduler. now is injected for testability; production
// callers pass time.Now. Returns TimelineMisconfig if the SOE action
// type is configured with a non-zero frame offset (§4.2, §7).
func New(delays map[camcore.ActionType]Delay, now func() time.Time) (*Scheduler, error) {
	if d, ok := delays[camcore.ActionSOE]; ok && d.FrameOffset != 0 {
		return nil, corestate.New("timeline.new", corestate.KindTimelineMisconfig,
			fmt.Errorf("SOE action configured with frame offset %d, want 0", d.FrameOffset))
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		delays:   delays,
		soeTimes: make(map[uint64]time.Time),
		now:      now,
	}, nil
}

// SetSOEOffset sets the IPA-reported offset applied on top of the
// kernel DMA-end timestamp when estimating a frame's SOE (§4.2, §8 S6).
func (s *Scheduler) SetSOEOffset(offset time.Duration) {
	s.soeOffset = offset
}

// ScheduleAction inserts action into the queue. Actions whose resolved
// firing time is already due are returned immediately for the caller
// to run; the rest, including offset-0 actions whose frame's SOE is
// not yet known, are queued for a later NotifyStartOfExposure or
// Advance call (§4.2).
func (s *Scheduler) ScheduleAction(action camcore.TimelineAction) []camcore.TimelineAction {
	d := s.delays[action.Type]

	if d.FrameOffset == 0 {
		soe, known := s.soeTimes[action.Frame]
		if !known {
			s.pending = append(s.pending, pendingAction{action: action})
			return nil
		}
		return s.resolveAgainst(action, d, soe)
	}

	// FrameOffset == -1: reference event is "now", the queue time.
	return s.resolveAgainst(action, d, s.now())
}

// resolveAgainst computes the fire time for action relative to
// referenceTime and either returns it ready to run or queues it.
func (s *Scheduler) resolveAgainst(action camcore.TimelineAction, d Delay, referenceTime time.Time) []camcore.TimelineAction {
	fireAt := referenceTime.Add(d.TimeDelay)
	if !fireAt.After(s.now()) {
		// Already due: fires immediately (§4.2 "Failure" clause).
		return []camcore.TimelineAction{action}
	}
	s.pending = append(s.pending, pendingAction{action: action, fireAt: fireAt, resolved: true})
	return nil
}

// NotifyStartOfExposure records the estimated SOE for frame sequence
// and fires every pending action whose target resolves to it, plus
// any other resolved action now due.
func (s *Scheduler) NotifyStartOfExposure(sequence uint64, soe time.Time) []camcore.TimelineAction {
	s.soeTimes[sequence] = soe

	var fired []camcore.TimelineAction
	remaining := make([]pendingAction, 0, len(s.pending))

	for _, p := range s.pending {
		if !p.resolved && p.action.Frame == sequence {
			d := s.delays[p.action.Type]
			fireAt := soe.Add(d.TimeDelay)
			if !fireAt.After(s.now()) {
				fired = append(fired, p.action)
				continue
			}
			p.fireAt = fireAt
			p.resolved = true
		}
		remaining = append(remaining, p)
	}

	s.pending = remaining
	fired = append(fired, s.drainDue()...)
	return fired
}

// BufferReady computes the frame's SOE from the kernel-provided
// DMA-end timestamp plus the configured IPA offset, and notifies the
// timeline (§4.2, §6). Mirrors the original pipeline's
// Timeline::bufferReady: the SOE action type's frame offset is
// asserted to be 0 at construction time, so no further check is
// needed here.
func (s *Scheduler) BufferReady(event camcore.BufferReadyEvent) []camcore.TimelineAction {
	soe := time.Unix(0, event.DMAEndNanos).Add(s.soeOffset)
	return s.NotifyStartOfExposure(event.Sequence, soe)
}

// Advance fires any resolved pending actions whose fire time is now
// due, driven by the outer event loop's timer (§4.2: "dispatch is
// driven by a timer and by SOE notifications").
func (s *Scheduler) Advance(now time.Time) []camcore.TimelineAction {
	prev := s.now
	s.now = func() time.Time { return now }
	defer func() { s.now = prev }()
	return s.drainDue()
}

// drainDue removes and returns every resolved pending action whose
// fire time has arrived.
func (s *Scheduler) drainDue() []camcore.TimelineAction {
	var fired []camcore.TimelineAction
	remaining := make([]pendingAction, 0, len(s.pending))

	for _, p := range s.pending {
		if p.resolved && !p.fireAt.After(s.now()) {
			fired = append(fired, p.action)
			continue
		}
		remaining = append(remaining, p)
	}

	s.pending = remaining
	return fired
}

// Reset discards all pending actions and recorded SOEs (§4.2), called
// on pipeline stop().
func (s *Scheduler) Reset() {
	s.pending = nil
	s.soeTimes = make(map[uint64]time.Time)
}

// PendingCount reports the number of actions still awaiting dispatch,
// used by tests.
func (s *Scheduler) PendingCount() int {
	return len(s.pending)
}
