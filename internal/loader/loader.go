// Package loader feeds filter-list text into an Engine line by line,
// tallying outcomes the way the teacher's internal/parser.Parser tallies
// Stats while scanning.
package loader

import (
	"bufio"
	"io"

	"github.com/quailmark/abpcore/internal/engine"
	"github.com/quailmark/abpcore/internal/filter"
)

// Stats summarizes one Load call: how many lines fell into each Filter
// kind, and why any Invalid lines were rejected.
type Stats struct {
	Total       int
	Comment     int
	Invalid     int
	Blocking    int
	Whitelist   int
	ElemHide    int
	Exception   int
	Blank       int
	SkipReasons map[string]int
}

func newStats() Stats {
	return Stats{SkipReasons: make(map[string]int)}
}

func (s *Stats) record(f *filter.Filter) {
	s.Total++
	if f == nil {
		s.Blank++
		return
	}
	switch f.Kind {
	case filter.KindComment:
		s.Comment++
	case filter.KindInvalid:
		s.Invalid++
		s.SkipReasons[f.Reason]++
	case filter.KindBlocking:
		s.Blocking++
	case filter.KindWhitelist:
		s.Whitelist++
	case filter.KindElemHide:
		s.ElemHide++
	case filter.KindElemHideException:
		s.Exception++
	}
}

// Load scans r line by line, adding each line to eng, and returns the
// resulting tally. It calls eng.WarmUp once scanning completes so
// steady-state queries against the loaded lists never pay a cold
// sync.Once check.
func Load(r io.Reader, eng *engine.Engine) (Stats, error) {
	stats := newStats()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		f := eng.AddFilterText(scanner.Text())
		stats.record(f)
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	eng.WarmUp()
	return stats, nil
}
