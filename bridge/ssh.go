package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/sftp"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/crypto/ssh"
)

type SSHInput struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	User    string `mapstructure:"user"`
	KeyFile string `mapstructure:"key_file"`
}

// sshBridge drives a single Linux board reachable over SSH instead of adb.
// Discovery reports the configured host as the one target when it answers,
// so orchestration sees the same shape as a multi-device bridge.
type sshBridge struct {
	input *SSHInput
	auths []ssh.AuthMethod
	out   io.Writer
}

func init() {
	Register(SSH, func(opts map[string]any, out io.Writer) (Bridge, error) {
		input := &SSHInput{}
		err := mapstructure.Decode(opts, input)
		if err != nil {
			return nil, fmt.Errorf("can't convert options to SSHInput: %w", err)
		}
		return NewSSH(input, out)
	})
}

func NewSSH(input *SSHInput, out io.Writer) (Bridge, error) {
	if input.Host == "" {
		return nil, errors.New("ssh bridge requires a host")
	}
	if input.Port == 0 {
		input.Port = 22
	}
	if input.User == "" {
		input.User = "root"
	}
	var auths []ssh.AuthMethod
	if input.KeyFile != "" {
		buf, err := os.ReadFile(input.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("can't read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(buf)
		if err != nil {
			return nil, fmt.Errorf("can't parse key file: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	return &sshBridge{input: input, auths: auths, out: out}, nil
}

func (b *sshBridge) addr() string {
	return fmt.Sprintf("%s:%d", b.input.Host, b.input.Port)
}

func (b *sshBridge) client() (*ssh.Client, error) {
	cfg := &ssh.ClientConfig{
		User:            b.input.User,
		Auth:            b.auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
	return ssh.Dial("tcp", b.addr(), cfg)
}

func (b *sshBridge) Version() (string, error) {
	client, err := b.client()
	if err != nil {
		return "", fmt.Errorf("connecting to %s failed: %w", b.addr(), err)
	}
	defer client.Close()
	return string(client.ServerVersion()), nil
}

func (b *sshBridge) Devices() ([]string, error) {
	client, err := b.client()
	if err != nil {
		slog.Debug("configured host unreachable", slog.String("addr", b.addr()), slog.String("error", err.Error()))
		return []string{}, nil
	}
	client.Close()
	return []string{b.addr()}, nil
}

func (b *sshBridge) Select(serial string) (Session, error) {
	return &sshSession{bridge: b, addr: serial}, nil
}

type sshSession struct {
	bridge *sshBridge
	addr   string
}

func (s *sshSession) Device() string { return s.addr }

func (s *sshSession) Push(localPath, remotePath string) error {
	fail := func(err error) error {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}

	local, err := os.Open(localPath)
	if err != nil {
		return fail(err)
	}
	defer local.Close()
	info, err := local.Stat()
	if err != nil {
		return fail(err)
	}

	if strings.HasSuffix(remotePath, "/") {
		remotePath = path.Join(remotePath, filepath.Base(localPath))
	}

	client, err := s.bridge.client()
	if err != nil {
		return fail(err)
	}
	defer client.Close()

	sftpc, err := sftp.NewClient(client)
	if err != nil {
		return fail(err)
	}
	defer sftpc.Close()

	err = sftpc.MkdirAll(path.Dir(remotePath))
	if err != nil {
		return fail(err)
	}

	dst, err := sftpc.Create(remotePath)
	if err != nil {
		return fail(err)
	}
	defer dst.Close()

	bar := progressbar.DefaultBytes(info.Size(), "pushing "+filepath.Base(localPath))
	_, err = io.Copy(dst, io.TeeReader(local, bar))
	if err != nil {
		return fail(err)
	}
	return nil
}

func (s *sshSession) Shell(tokens ...string) error {
	line := CommandLine(tokens)
	slog.Debug("running remote command", slog.String("device", s.addr), slog.String("command", line))

	client, err := s.bridge.client()
	if err != nil {
		return &ExecutionError{Device: s.addr, Cmd: line, Err: err}
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		return &ExecutionError{Device: s.addr, Cmd: line, Err: err}
	}
	defer sess.Close()

	sess.Stdout = s.bridge.out
	sess.Stderr = s.bridge.out
	err = sess.Run(line)
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		slog.Debug("remote command exited nonzero", slog.String("device", s.addr), slog.String("command", line))
		return nil
	}
	if err != nil {
		return &ExecutionError{Device: s.addr, Cmd: line, Err: err}
	}
	return nil
}
