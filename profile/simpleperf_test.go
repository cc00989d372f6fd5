package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterEventsCanonicalOrder(t *testing.T) {
	require.Len(t, CounterEvents, 19)
	assert.Equal(t, "cpu-cycles", CounterEvents[0])
	assert.Equal(t, "instructions", CounterEvents[1])
	assert.Equal(t, "page-faults", CounterEvents[len(CounterEvents)-1])
}

func TestSimpleperfCommand(t *testing.T) {
	prof, err := NewProfiler(Simpleperf)
	require.NoError(t, err)

	argv := prof.Command([]string{"/data/local/tmp/MatrixMultiplication", "--test 3", "--size 1024"})
	require.Len(t, argv, 1+len(CounterEvents)+3)
	assert.Equal(t, "simpleperf stat", argv[0])
	for i, ev := range CounterEvents {
		assert.Equal(t, "-e "+ev, argv[1+i])
	}
	assert.Equal(t, []string{"/data/local/tmp/MatrixMultiplication", "--test 3", "--size 1024"}, argv[1+len(CounterEvents):])
}

func TestSimpleperfCommandLeavesArgvUntouched(t *testing.T) {
	prof, err := NewProfiler(Simpleperf)
	require.NoError(t, err)

	argv := []string{"/bin/true"}
	out := prof.Command(argv)
	assert.Equal(t, []string{"/bin/true"}, argv)
	assert.Equal(t, "/bin/true", out[len(out)-1])
}

func TestNewProfilerRejectsNone(t *testing.T) {
	_, err := NewProfiler(None)
	assert.Error(t, err)
}

func TestNewProfilerRejectsUnknownKind(t *testing.T) {
	_, err := NewProfiler(ProfilerKind("vtune"))
	assert.Error(t, err)
}

func TestExplainProfilersListsSimpleperf(t *testing.T) {
	assert.True(t, strings.Contains(ExplainProfilers(), `"simpleperf"`))
}
