package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/perfkit/devicebench/bridge"
	"github.com/perfkit/devicebench/profile"
)

const (
	DefaultSize      = 1024
	DefaultArtifact  = "output/MatrixMultiplication"
	DefaultRemoteDir = "/data/local/tmp/"

	// Workload test modes are 1-indexed and the sweep range is inclusive
	// on both ends.
	SweepFirstMode = 1
	SweepLastMode  = 11
)

// ErrNoDevices means discovery found nothing attached. Fatal; the run
// never reaches staging.
var ErrNoDevices = errors.New("no devices attached")

type Config struct {
	// Size of the workload data. Zero means unset and takes DefaultSize;
	// negative values are rejected by Run.
	Size       int
	Check      bool
	DebugSweep bool
	Artifact   string
	RemoteDir  string
}

func (c *Config) fillDefaults() {
	if c.Size == 0 {
		c.Size = DefaultSize
	}
	if c.Artifact == "" {
		c.Artifact = DefaultArtifact
	}
	if c.RemoteDir == "" {
		c.RemoteDir = DefaultRemoteDir
	}
}

// Options builds the workload's option tokens in the order the device sees
// them. --size is always present (the default fills it rather than omitting
// it); --check is the only conditional flag.
func Options(cfg *Config) []string {
	opts := []string{fmt.Sprintf("--size %d", cfg.Size)}
	if cfg.Check {
		opts = append(opts, "--check")
	}
	return opts
}

// Harness drives one end-to-end benchmark session on a single device.
type Harness struct {
	bridge bridge.Bridge
	cfg    *Config
}

func New(b bridge.Bridge, cfg *Config) *Harness {
	cfg.fillDefaults()
	return &Harness{bridge: b, cfg: cfg}
}

// Run discovers devices, binds to the first one, stages the workload, and
// dispatches either a single run or the full profiling sweep. Fail-fast:
// the first error aborts the remaining sequence, and nothing is retried.
func (h *Harness) Run() error {
	if h.cfg.Size < 0 {
		return fmt.Errorf("size must be a positive integer, got %d", h.cfg.Size)
	}

	v, err := h.bridge.Version()
	if err != nil {
		slog.Warn("bridge version check failed", slog.String("error", err.Error()))
	} else {
		slog.Info("bridge version", slog.String("version", v))
	}

	devices, err := h.bridge.Devices()
	if err != nil {
		return fmt.Errorf("device discovery failed: %w", err)
	}
	slog.Info("discovered devices", slog.String("devices", strings.Join(devices, ", ")))
	if len(devices) == 0 {
		return ErrNoDevices
	}

	sess, err := h.bridge.Select(devices[0])
	if err != nil {
		return fmt.Errorf("selecting device %s failed: %w", devices[0], err)
	}
	slog.Info("selected device", slog.String("device", sess.Device()))

	err = sess.Push(h.cfg.Artifact, h.cfg.RemoteDir)
	if err != nil {
		return err
	}

	remote := path.Join(h.cfg.RemoteDir, filepath.Base(h.cfg.Artifact))
	err = sess.Shell("chmod", "777", remote)
	if err != nil {
		return err
	}

	opts := Options(h.cfg)
	if !h.cfg.DebugSweep {
		return sess.Shell(append([]string{remote}, opts...)...)
	}
	return h.sweep(sess, remote, opts)
}

// sweep runs the workload once per test mode under simpleperf, strictly
// sequentially in increasing mode order. The device is a single shared
// execution context, so iterations never overlap.
func (h *Harness) sweep(sess bridge.Session, remote string, opts []string) error {
	prof, err := profile.NewProfiler(profile.Simpleperf)
	if err != nil {
		return fmt.Errorf("creating profiler failed: %w", err)
	}
	for i := SweepFirstMode; i <= SweepLastMode; i++ {
		slog.Info("starting sweep iteration", slog.Int("test", i))
		argv := append([]string{remote, fmt.Sprintf("--test %d", i)}, opts...)
		err = sess.Shell(prof.Command(argv)...)
		if err != nil {
			return err
		}
	}
	return nil
}
