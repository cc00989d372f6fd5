package bridge

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSSHRequiresHost(t *testing.T) {
	_, err := NewSSH(&SSHInput{}, os.Stdout)
	assert.Error(t, err)
}

func TestNewSSHDefaults(t *testing.T) {
	b, err := NewSSH(&SSHInput{Host: "devboard.local"}, os.Stdout)
	require.NoError(t, err)
	sb := b.(*sshBridge)
	assert.Equal(t, 22, sb.input.Port)
	assert.Equal(t, "root", sb.input.User)
	assert.Equal(t, "devboard.local:22", sb.addr())
}

func TestNewSSHRejectsMissingKeyFile(t *testing.T) {
	_, err := NewSSH(&SSHInput{Host: "devboard.local", KeyFile: "does/not/exist"}, os.Stdout)
	assert.Error(t, err)
}

func TestSSHFactoryDecodesOptions(t *testing.T) {
	b, err := New(SSH, map[string]any{"host": "devboard.local", "port": 2222, "user": "bench"}, os.Stdout)
	require.NoError(t, err)
	sb := b.(*sshBridge)
	assert.Equal(t, "devboard.local:2222", sb.addr())
	assert.Equal(t, "bench", sb.input.User)
}

func TestSSHSelectBindsAddr(t *testing.T) {
	b, err := NewSSH(&SSHInput{Host: "devboard.local"}, os.Stdout)
	require.NoError(t, err)
	sess, err := b.Select("devboard.local:22")
	require.NoError(t, err)
	assert.Equal(t, "devboard.local:22", sess.Device())
}
