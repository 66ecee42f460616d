package groove

import "strings"

// DiagnosticsBuffer is a fixed-capacity ring of human-readable snapshots of
// the voting and lock state. It sits outside the correctness contract and
// exists purely for field debugging.
type DiagnosticsBuffer struct {
	entries  []string
	capacity int
}

func newDiagnosticsBuffer(capacity int) *DiagnosticsBuffer {
	if capacity <= 0 {
		capacity = 64
	}
	return &DiagnosticsBuffer{capacity: capacity}
}

func (b *DiagnosticsBuffer) add(entry string) {
	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:b.capacity-1]
	}
	b.entries = append(b.entries, entry)
}

// String joins the retained snapshots, oldest first.
func (b *DiagnosticsBuffer) String() string {
	return strings.Join(b.entries, "\n")
}

func (b *DiagnosticsBuffer) clear() {
	b.entries = b.entries[:0]
}

func (b *DiagnosticsBuffer) len() int {
	return len(b.entries)
}
