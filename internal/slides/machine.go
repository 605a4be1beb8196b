package slides

import "time"

// Boundary is a confirmed slide transition: the first frame of the new
// slide.
type Boundary struct {
	Index     uint64
	Timestamp time.Duration
}

type machineState int

const (
	// stateWatching is the steady state, no pending boundary.
	stateWatching machineState = iota
	// stateCandidate means a boundary frame has been flagged and is
	// accumulating confirmation.
	stateCandidate
)

// pendingTransition is a candidate boundary awaiting confirmation. It only
// exists between detection and confirmation.
type pendingTransition struct {
	index     uint64
	timestamp time.Duration
}

// transitionMachine turns the per-frame difference signal into confirmed
// slide boundaries. A candidate is confirmed once the changed content has
// persisted for the minimum slide length; if the content reverts to the
// prior slide before that, the candidate is discarded and the frames since
// it fold back into the open slide. Emission is deferred until confirmation,
// so the fold-back needs no undo machinery.
type transitionMachine struct {
	det      Detector
	settings Settings
	minSlide time.Duration
	confirm  func(Boundary)

	state    machineState
	pending  pendingTransition
	openedAt time.Duration
	started  bool
}

func newTransitionMachine(det Detector, settings Settings, confirm func(Boundary)) *transitionMachine {
	return &transitionMachine{
		det:      det,
		settings: settings,
		minSlide: settings.MinimumSlideDuration(),
		confirm:  confirm,
	}
}

func (m *transitionMachine) Observe(f *Frame) {
	if !m.started {
		m.started = true
		m.openedAt = f.Timestamp
	}

	sig := m.det.Score(f)

	switch m.state {
	case stateWatching:
		// Candidates inside the minimum-length window of the open slide
		// are folded in immediately; no interior slide may undercut the
		// minimum from either side.
		if sig.Candidate && f.Timestamp-m.openedAt >= m.minSlide {
			m.state = stateCandidate
			m.pending = pendingTransition{index: f.Index, timestamp: f.Timestamp}
			if m.minSlide == 0 {
				m.promote(f)
			}
			return
		}
		m.det.MarkStable(f)

	case stateCandidate:
		if m.det.Drift(f) <= m.settings.ChangeRatioThreshold {
			// Transient blip (cursor flash, brief occlusion): the content
			// is back to the open slide.
			m.state = stateWatching
			m.det.MarkStable(f)
			return
		}
		if f.Timestamp-m.pending.timestamp >= m.minSlide {
			m.promote(f)
		}
	}
}

func (m *transitionMachine) promote(f *Frame) {
	m.confirm(Boundary{Index: m.pending.index, Timestamp: m.pending.timestamp})
	m.openedAt = m.pending.timestamp
	m.state = stateWatching
	m.det.MarkStable(f)
}
