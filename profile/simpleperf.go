package profile

// CounterEvents is the canonical hardware counter set measured during a
// profiling sweep. Order matters: it becomes the literal -e flag order on
// the device, and it is the same for every sweep iteration.
var CounterEvents = []string{
	"cpu-cycles",
	"instructions",
	"task-clock",
	"cpu-clock",
	"context-switches",
	"stalled-cycles-frontend",
	"stalled-cycles-backend",
	"cache-misses",
	"cache-references",
	"L1-dcache-loads",
	"L1-dcache-load-misses",
	"LLC-loads",
	"LLC-load-misses",
	"branch-misses",
	"branch-loads",
	"branch-load-misses",
	"major-faults",
	"minor-faults",
	"page-faults",
}

type simpleperf struct{}

func init() {
	RegisterProfiler(Simpleperf, NewSimpleperf)
}

func NewSimpleperf() Profiler {
	return &simpleperf{}
}

func (s *simpleperf) Command(argv []string) []string {
	out := make([]string, 0, len(CounterEvents)+len(argv)+1)
	out = append(out, "simpleperf stat")
	for _, e := range CounterEvents {
		out = append(out, "-e "+e)
	}
	return append(out, argv...)
}
