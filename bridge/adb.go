package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/mitchellh/mapstructure"
)

type AdbInput struct {
	// Path to the adb binary. Resolved from PATH when empty.
	Path string `mapstructure:"path"`

	// Oldest adb version the harness has been exercised against. A warning
	// is logged below it; the run still proceeds.
	MinVersion string `mapstructure:"min_version"`
}

type adbBridge struct {
	input *AdbInput
	out   io.Writer
}

func init() {
	Register(Adb, func(opts map[string]any, out io.Writer) (Bridge, error) {
		input := &AdbInput{}
		err := mapstructure.Decode(opts, input)
		if err != nil {
			return nil, fmt.Errorf("can't convert options to AdbInput: %w", err)
		}
		return NewAdb(input, out)
	})
}

func NewAdb(input *AdbInput, out io.Writer) (Bridge, error) {
	if input.Path == "" {
		input.Path = "adb"
	}
	if input.MinVersion == "" {
		input.MinVersion = "1.0.39"
	}
	if _, err := version.NewVersion(input.MinVersion); err != nil {
		return nil, fmt.Errorf("can't parse min_version: %w", err)
	}
	return &adbBridge{input: input, out: out}, nil
}

func (a *adbBridge) Version() (string, error) {
	out, err := exec.Command(a.input.Path, "version").Output()
	if err != nil {
		return "", fmt.Errorf("adb version failed: %w", err)
	}
	line := firstLine(string(out))
	a.checkVersion(line)
	return line, nil
}

// checkVersion reads the trailing version number out of a line like
// "Android Debug Bridge version 1.0.41". Unparseable lines are ignored.
func (a *adbBridge) checkVersion(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	v, err := version.NewVersion(fields[len(fields)-1])
	if err != nil {
		return
	}
	min := version.Must(version.NewVersion(a.input.MinVersion))
	if v.LessThan(min) {
		slog.Warn("adb is older than the tested minimum", slog.String("version", v.String()), slog.String("minimum", min.String()))
	}
}

func (a *adbBridge) Devices() ([]string, error) {
	out, err := exec.Command(a.input.Path, "devices").Output()
	if err != nil {
		return nil, fmt.Errorf("adb devices failed: %w", err)
	}
	return parseDeviceList(string(out)), nil
}

// parseDeviceList reads the table printed by adb devices. Only entries in
// the "device" state are reachable; offline and unauthorized ones are
// skipped. Discovery order is preserved.
func parseDeviceList(out string) []string {
	devices := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "device" {
			devices = append(devices, fields[0])
		}
	}
	return devices
}

func (a *adbBridge) Select(serial string) (Session, error) {
	return &adbSession{bridge: a, serial: serial}, nil
}

type adbSession struct {
	bridge *adbBridge
	serial string
}

func (s *adbSession) Device() string { return s.serial }

func (s *adbSession) Push(localPath, remotePath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	err := s.run("push", localPath, remotePath)
	if err != nil {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	return nil
}

func (s *adbSession) Shell(tokens ...string) error {
	line := CommandLine(tokens)
	slog.Debug("running remote command", slog.String("device", s.serial), slog.String("command", line))

	var stderr bytes.Buffer
	cmd := exec.Command(s.bridge.input.Path, "-s", s.serial, "shell", line)
	cmd.Stdout = s.bridge.out
	cmd.Stderr = io.MultiWriter(s.bridge.out, &stderr)
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// adb reports both a nonzero workload exit and its own transport
		// failures through the exit status. The former is the workload's
		// business; the latter shows up as an adb diagnostic on stderr.
		if msg, ok := adbDiagnostic(stderr.Bytes()); ok {
			return &ExecutionError{Device: s.serial, Cmd: line, Err: errors.New(msg)}
		}
		slog.Debug("remote command exited nonzero", slog.String("device", s.serial), slog.String("command", line))
		return nil
	}
	if err != nil {
		return &ExecutionError{Device: s.serial, Cmd: line, Err: err}
	}
	return nil
}

// adbDiagnostic reports whether stderr carries one of adb's own error
// lines, e.g. "adb: error: device 'R58M123ABC' not found" after a mid-run
// disconnect. The workload's stderr never takes this shape.
func adbDiagnostic(stderr []byte) (string, bool) {
	for _, line := range strings.Split(string(stderr), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "error:") || strings.HasPrefix(line, "adb: error:") {
			return line, true
		}
	}
	return "", false
}

func (s *adbSession) run(args ...string) error {
	cmd := exec.Command(s.bridge.input.Path, append([]string{"-s", s.serial}, args...)...)
	cmd.Stdout = s.bridge.out
	cmd.Stderr = s.bridge.out
	return cmd.Run()
}

func firstLine(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(line)
}
