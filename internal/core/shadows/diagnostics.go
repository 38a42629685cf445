package shadows

import (
	"sync"

	"chosenoffset.com/lightcore/internal/observability/log"
)

// Diagnostic classes reported by the engine.
const (
	ClassUnmatchedWedge = "unmatched-wedge"
	ClassProjectionMiss = "projection-miss"
)

// reporter logs each diagnostic class once. It belongs to one engine, so
// two lights never silence each other.
type reporter struct {
	logger *log.Logger

	mu   sync.Mutex
	seen map[string]int
}

func newReporter(logger *log.Logger) *reporter {
	return &reporter{logger: logger, seen: make(map[string]int)}
}

// report counts an occurrence and logs it if it is the first of its class.
func (r *reporter) report(class string, fields ...log.Field) {
	r.mu.Lock()
	r.seen[class]++
	first := r.seen[class] == 1
	r.mu.Unlock()

	if !first {
		return
	}
	r.logger.Warn("visibility edge case, further occurrences suppressed",
		append([]log.Field{log.String("class", class)}, fields...)...)
}

// count returns how often class has occurred.
func (r *reporter) count(class string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[class]
}
