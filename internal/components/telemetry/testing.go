package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

type Report struct {
	ID     string
	Params []any
}

// TestAPI records every report so tests can assert on what a component reported,
// debug messages are forwarded to t.Log.
type TestAPI struct {
	t  testing.TB
	mu sync.Mutex

	broken   []Report
	warnings []Report
	counts   map[string]int64
}

func NewTestAPI(t testing.TB) *TestAPI {
	return &TestAPI{t: t, counts: map[string]int64{}}
}

func (a *TestAPI) ReportBroken(id string, params ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.broken = append(a.broken, Report{ID: id, Params: params})
	a.t.Log("broken:", id, fmt.Sprint(params...))
}

func (a *TestAPI) ReportWarning(id string, params ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.warnings = append(a.warnings, Report{ID: id, Params: params})
	a.t.Log("warning:", id, fmt.Sprint(params...))
}

func (a *TestAPI) ReportDebug(msg string, params ...any) {
	a.t.Log("debug:", msg, fmt.Sprint(params...))
}

func (a *TestAPI) ReportCount(id string, count int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts[id] = count
}

func (a *TestAPI) Broken() []Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Report(nil), a.broken...)
}

func (a *TestAPI) Warnings() []Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Report(nil), a.warnings...)
}

// Count returns the last count reported under an id ending in suffix.
func (a *TestAPI) Count(suffix string) (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, n := range a.counts {
		if strings.HasSuffix(id, suffix) {
			return n, true
		}
	}
	return 0, false
}
