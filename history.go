package brush

// snapshot is an immutable copy of a mask state: the canvas, its tracked
// bounds and the mask origin.
type snapshot struct {
	canvas  *Canvas
	tracker Tracker
	origin  Point
}

// History is a bounded stack of canvas snapshots used to undo strokes.
// Once the depth is reached, pushing evicts the oldest snapshot.
// Snapshots are deep copied both on push and on restore, so an entry
// is never mutated after it was pushed.
type History struct {
	entries []snapshot
	depth   int
}

// NewHistory returns an empty history holding at most depth snapshots.
// A depth below one falls back to DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = DefaultHistoryDepth
	}
	return &History{
		entries: make([]snapshot, 0, depth),
		depth:   depth,
	}
}

// Push stores a copy of the canvas and of the tracker state, when one is given.
func (h *History) Push(c *Canvas, t *Tracker) {
	s := snapshot{}
	if t != nil {
		s.tracker = *t
	} else {
		s.tracker.Reset(c.Width(), c.Height())
	}
	h.push(c, s)
}

func (h *History) push(c *Canvas, s snapshot) {
	s.canvas = c.Clone()
	if len(h.entries) == h.depth {
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = snapshot{}
		h.entries = h.entries[:len(h.entries)-1]
		Logger().Debug("stroke history full, oldest snapshot evicted", "depth", h.depth)
	}
	h.entries = append(h.entries, s)
	Logger().Debug("stroke history push", "len", len(h.entries))
}

// Undo drops the most recent snapshot and returns a copy of the previous
// one with its tracker state. With less than two snapshots there is
// nothing to go back to: ok is false and the history is left unchanged.
func (h *History) Undo() (c *Canvas, t Tracker, ok bool) {
	s, ok := h.undo()
	return s.canvas, s.tracker, ok
}

func (h *History) undo() (snapshot, bool) {
	if !h.CanUndo() {
		Logger().Info("no stroke history")
		return snapshot{}, false
	}
	last := len(h.entries) - 1
	h.entries[last] = snapshot{}
	h.entries = h.entries[:last]
	return h.top(), true
}

// Top returns a copy of the most recent snapshot. ok is false on an empty history.
func (h *History) Top() (c *Canvas, t Tracker, ok bool) {
	if len(h.entries) == 0 {
		return nil, Tracker{}, false
	}
	s := h.top()
	return s.canvas, s.tracker, true
}

// top returns the most recent snapshot with its canvas deep copied.
func (h *History) top() snapshot {
	s := h.entries[len(h.entries)-1]
	s.canvas = s.canvas.Clone()
	return s
}

// CanUndo reports whether a previous state is available.
func (h *History) CanUndo() bool {
	return len(h.entries) >= 2
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// Depth returns the maximum number of stored snapshots.
func (h *History) Depth() int {
	return h.depth
}
