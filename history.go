package eraconsole

// DefaultMaxHistory is the history cap used when Config.MaxHistory is zero.
const DefaultMaxHistory = 10000

// ScrollInfo summarizes the scroll position for status displays.
type ScrollInfo struct {
	Total    int // entries in history
	Visible  int // entries in the visible slice
	Offset   int // entries skipped from the live tail
	First    int // 1-based index of the first visible entry, 0 when empty
	Last     int // 1-based index of the last visible entry
	AtTop    bool
	AtBottom bool
}

// History is the append-only list of console entries plus the scroll state
// that selects which of them are visible.
//
// The scroll offset counts entries skipped from the most recent end, so
// offset 0 is the live tail. Every mutation re-slices the visible window.
type History struct {
	entries     []*Entry
	visible     []*Entry
	offset      int
	maxLen      int
	viewHeight  int
	totalHeight int
	first       int // index of visible[0] in entries
}

// NewHistory creates an empty history capped at maxLen entries whose visible
// window is viewHeight pixels tall. maxLen <= 0 selects DefaultMaxHistory.
func NewHistory(maxLen, viewHeight int) *History {
	if maxLen <= 0 {
		maxLen = DefaultMaxHistory
	}
	return &History{maxLen: maxLen, viewHeight: viewHeight}
}

// Len returns the number of entries in history.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns the full history, oldest first. The returned slice MUST NOT
// be mutated.
func (h *History) Entries() []*Entry {
	return h.entries
}

// Offset returns the current scroll offset.
func (h *History) Offset() int {
	return h.offset
}

// MaxLen returns the history cap.
func (h *History) MaxLen() int {
	return h.maxLen
}

// ViewHeight returns the height of the content area in pixels.
func (h *History) ViewHeight() int {
	return h.viewHeight
}

// TotalHeight returns the summed height of every entry.
func (h *History) TotalHeight() int {
	return h.totalHeight
}

// ScrollbarVisible reports whether the history is taller than the viewport.
func (h *History) ScrollbarVisible() bool {
	return h.totalHeight > h.viewHeight
}

// SetViewHeight changes the content area height and re-slices.
func (h *History) SetViewHeight(px int) {
	h.viewHeight = px
	h.reslice()
}

// push appends entries, evicts past the cap and applies auto-pin. It returns
// the number of evicted entries.
func (h *History) push(entries ...*Entry) int {
	if len(entries) == 0 {
		return 0
	}
	pinned := h.offset <= AutoPinBand

	h.entries = append(h.entries, entries...)
	for _, e := range entries {
		h.totalHeight += e.Height
	}

	evicted := 0
	if over := len(h.entries) - h.maxLen; over > 0 {
		for _, e := range h.entries[:over] {
			h.totalHeight -= e.Height
		}
		// Copy into a fresh slice so evicted entries can be collected.
		kept := make([]*Entry, h.maxLen, h.maxLen+len(entries))
		copy(kept, h.entries[over:])
		h.entries = kept
		evicted = over
	}
	h.offset = h.clamp(h.offset)

	if pinned {
		h.offset = 0
	}
	h.reslice()
	return evicted
}

// ScrollUp moves the view n entries towards older content.
func (h *History) ScrollUp(n int) {
	h.offset = h.clamp(h.offset + n)
	h.reslice()
}

// ScrollDown moves the view n entries towards the live tail.
func (h *History) ScrollDown(n int) {
	h.offset = h.clamp(h.offset - n)
	h.reslice()
}

// ScrollToBottom pins the view to the live tail.
func (h *History) ScrollToBottom() {
	h.offset = 0
	h.reslice()
}

// ScrollToTop shows the oldest entry. When the whole history fits in the
// viewport there is nothing to scroll and the offset stays 0.
func (h *History) ScrollToTop() {
	if h.totalHeight <= h.viewHeight {
		h.offset = 0
	} else {
		h.offset = h.clamp(len(h.entries) - 1)
	}
	h.reslice()
}

// Clear drops every entry and resets the scroll state.
func (h *History) Clear() {
	h.entries = nil
	h.visible = nil
	h.offset = 0
	h.first = 0
	h.totalHeight = 0
}

// clamp limits an offset to [0, max(0, len-1)].
func (h *History) clamp(offset int) int {
	maxOffset := len(h.entries) - 1
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	if offset < 0 {
		return 0
	}
	return offset
}

// VisibleSlice returns the entries that fit the viewport at the current
// offset, oldest first. The returned slice MUST NOT be mutated.
func (h *History) VisibleSlice() []*Entry {
	return h.visible
}

// reslice recomputes the visible window: walk backward from the anchor entry
// while entries fit, then fill any remaining height forward from the anchor.
func (h *History) reslice() {
	h.visible = nil
	n := len(h.entries)
	if n == 0 {
		return
	}
	start := n - 1 - h.offset
	if start < 0 {
		start = 0
	}

	used := 0
	first := start + 1
	for i := start; i >= 0; i-- {
		e := h.entries[i]
		if used+e.Height > h.viewHeight {
			break
		}
		used += e.Height
		first = i
	}
	h.visible = append([]*Entry(nil), h.entries[first:start+1]...)
	h.first = first

	if len(h.visible) == 0 {
		// The anchor alone is taller than the viewport; show it clipped
		// rather than showing nothing.
		h.visible = append(h.visible, h.entries[start])
		h.first = start
		return
	}

	if used < h.viewHeight && start < n-1 {
		for i := start + 1; i < n; i++ {
			e := h.entries[i]
			if used+e.Height > h.viewHeight {
				break
			}
			used += e.Height
			h.visible = append(h.visible, e)
		}
	}
}

// ScrollInfo reports counts and edge flags for the current scroll position.
func (h *History) ScrollInfo() ScrollInfo {
	total := len(h.entries)
	visible := len(h.visible)
	info := ScrollInfo{
		Total:    total,
		Visible:  visible,
		Offset:   h.offset,
		AtBottom: h.offset == 0,
	}
	if visible > 0 {
		info.First = h.first + 1
		info.Last = h.first + visible
	}
	if total > 0 {
		info.AtTop = h.ScrollbarVisible() && h.offset >= total-visible
	}
	return info
}
