package profile

import (
	"fmt"
	"strings"
)

// A Profiler decorates a remote command line with measurement tooling.
type Profiler interface {
	// Returns argv wrapped in the profiler's own invocation.
	Command(argv []string) []string
}

type ProfilerKind string

const (
	None       ProfilerKind = "none"
	Simpleperf ProfilerKind = "simpleperf"
)

type ProfilerFactory func() Profiler

var allProfilers map[ProfilerKind]ProfilerFactory

func RegisterProfiler(kind ProfilerKind, factory ProfilerFactory) {
	if allProfilers == nil {
		allProfilers = map[ProfilerKind]ProfilerFactory{
			None: func() Profiler { panic("Profiler kind none is reserved and can't be created") },
		}
	}
	allProfilers[kind] = factory
}

func NewProfiler(kind ProfilerKind) (Profiler, error) {
	if kind == None {
		return nil, fmt.Errorf("Profiler kind none is reserved and can't be created")
	}

	factory, ok := allProfilers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown profiler kind: %s", kind)
	}
	return factory(), nil
}

func ExplainProfilers() string {
	i := 0
	var sb strings.Builder
	for kind := range allProfilers {
		sb.WriteString("\"")
		sb.WriteString(string(kind))
		sb.WriteString("\"")
		if i < len(allProfilers)-1 {
			sb.WriteString(", ")
		}
		i++
	}
	return sb.String()
}
