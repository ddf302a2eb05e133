package finger

// DefaultWindow is the number of consecutive unanimous readings required
// before a finger's stable state changes.
const DefaultWindow = 3

// window is a fixed-capacity ring of the most recent raw readings.
type window struct {
	buf  []bool
	next int
	size int
}

func (w *window) push(v bool) {
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
}

func (w *window) full() bool {
	return w.size == len(w.buf)
}

// unanimous reports whether every reading in a full window agrees, and on
// which value.
func (w *window) unanimous() (value bool, ok bool) {
	if !w.full() {
		return false, false
	}
	first := w.buf[0]
	for _, v := range w.buf[1:] {
		if v != first {
			return false, false
		}
	}
	return first, true
}

func (w *window) reset() {
	for i := range w.buf {
		w.buf[i] = false
	}
	w.next = 0
	w.size = 0
}

// Debouncer holds one reading window per finger. It is owned by a single
// goroutine and is not safe for concurrent use.
type Debouncer struct {
	windows [Count]window
}

// NewDebouncer creates a Debouncer whose windows hold size readings.
// Sizes below 1 are treated as 1.
func NewDebouncer(size int) *Debouncer {
	if size < 1 {
		size = 1
	}
	d := &Debouncer{}
	for i := range d.windows {
		d.windows[i] = window{buf: make([]bool, size)}
	}
	return d
}

// Size returns the window capacity.
func (d *Debouncer) Size() int {
	return len(d.windows[0].buf)
}

// Filter records raw for finger f and returns the state to use now: the
// unanimous value when the window is full and agrees, prev otherwise.
func (d *Debouncer) Filter(f ID, raw bool, prev State) State {
	w := &d.windows[f]
	w.push(raw)
	if v, ok := w.unanimous(); ok {
		return StateOf(v)
	}
	return prev
}

// FilterAll runs Filter for every finger.
func (d *Debouncer) FilterAll(raw Raw, prev [Count]State) [Count]State {
	var out [Count]State
	for _, f := range All {
		out[f] = d.Filter(f, raw[f], prev[f])
	}
	return out
}

// Reset empties every window.
func (d *Debouncer) Reset() {
	for i := range d.windows {
		d.windows[i].reset()
	}
}
