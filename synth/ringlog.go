package synth

import "sync"

// ringLogSize bounds the diagnostic ring buffer (§7: "an in-memory ring
// buffer that the host may read via a debug interface").
const ringLogSize = 64

// ringLog is a fixed-size circular log of diagnostic strings. It stays on
// the standard library deliberately: the render path must never allocate
// or call into a logging framework (§5), and nothing in the retrieved
// pack offers a ring-buffer-shaped logging sink (see DESIGN.md).
type ringLog struct {
	mu   sync.Mutex
	msgs [ringLogSize]string
	next uint64
}

func (r *ringLog) add(msg string) {
	r.mu.Lock()
	r.msgs[r.next%ringLogSize] = msg
	r.next++
	r.mu.Unlock()
}

// snapshot returns the logged messages oldest-first. It allocates, so it
// must only be called from the host's debug interface, never from Render.
func (r *ringLog) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if n > ringLogSize {
		n = ringLogSize
	}
	out := make([]string, 0, n)
	start := uint64(0)
	if r.next > ringLogSize {
		start = r.next - ringLogSize
	}
	for i := uint64(0); i < n; i++ {
		out = append(out, r.msgs[(start+i)%ringLogSize])
	}
	return out
}
