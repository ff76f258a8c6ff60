package frame

import (
	"fmt"
	"strings"
	"time"
)

// Stats is a per-frame CPU-timing scope tracker: insertion-ordered
// named scopes, begin/end pairs, a formatted dump.
type Stats struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	order  []string
}

func NewStats() *Stats {
	return &Stats{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		order:  make([]string, 0),
	}
}

func (s *Stats) Begin(name string) {
	s.starts[name] = time.Now()
	for _, n := range s.order {
		if n == name {
			return
		}
	}
	s.order = append(s.order, name)
}

func (s *Stats) End(name string) {
	if start, ok := s.starts[name]; ok {
		s.scopes[name] = time.Since(start)
	}
}

// String renders every recorded scope in insertion order, one line
// each, in milliseconds.
func (s *Stats) String() string {
	var sb strings.Builder
	for _, name := range s.order {
		ms := float64(s.scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("%-12s: %.3f ms\n", name, ms))
	}
	return sb.String()
}
