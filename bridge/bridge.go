package bridge

import (
	"fmt"
	"io"
	"strings"
)

// A Bridge is a control channel to attached benchmark devices. It can
// enumerate reachable devices and bind to one of them; file transfer and
// remote execution happen through the Session it hands out.
type Bridge interface {
	// Reports the bridge tool's version string. Diagnostic only.
	Version() (string, error)

	// Returns the serials of currently reachable devices, in discovery
	// order. An empty slice means nothing is attached; it is not an error.
	Devices() ([]string, error)

	// Binds a session to the device with the given serial. The serial
	// should come from a prior Devices call; it is not re-validated here.
	Select(serial string) (Session, error)
}

// A Session is a Bridge bound to exactly one device. Every command it
// issues addresses that device.
type Session interface {
	// The serial of the bound device.
	Device() string

	// Copies a local file to remotePath on the device. A remotePath
	// ending in / names a directory and the local base name is kept.
	Push(localPath, remotePath string) error

	// Runs the tokens as one remote command line and blocks until the
	// remote process exits. Combined output is streamed to the bridge's
	// writer. The remote exit status is not inspected; only transport
	// failures are reported.
	Shell(tokens ...string) error
}

// CommandLine joins command tokens into the literal line the device runs.
func CommandLine(tokens []string) string {
	return strings.Join(tokens, " ")
}

// TransferError means a file could not be staged on the device.
type TransferError struct {
	Local  string
	Remote string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("pushing %s to %s failed: %v", e.Local, e.Remote, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ExecutionError means the control channel to the device failed while a
// remote command was being issued. It never reflects the remote process's
// own exit status.
type ExecutionError struct {
	Device string
	Cmd    string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("running %q on %s failed: %v", e.Cmd, e.Device, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type Kind string

const (
	Adb Kind = "adb"
	SSH Kind = "ssh"
)

type Factory func(opts map[string]any, out io.Writer) (Bridge, error)

var allBridges map[Kind]Factory

// All bridges must register themselves at module load time so the CLI can
// create one from its configured kind string.
func Register(kind Kind, factory Factory) {
	if allBridges == nil {
		allBridges = map[Kind]Factory{}
	}
	allBridges[kind] = factory
}

func New(kind Kind, opts map[string]any, out io.Writer) (Bridge, error) {
	factory, ok := allBridges[kind]
	if !ok {
		return nil, fmt.Errorf("unknown bridge kind: %s", kind)
	}
	return factory(opts, out)
}

func Explain() string {
	i := 0
	var sb strings.Builder
	for kind := range allBridges {
		sb.WriteString("\"")
		sb.WriteString(string(kind))
		sb.WriteString("\"")
		if i < len(allBridges)-1 {
			sb.WriteString(", ")
		}
		i++
	}
	return sb.String()
}
