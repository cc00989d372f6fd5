package bridge

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeviceList(t *testing.T) {
	out := "List of devices attached\n" +
		"emulator-5554\tdevice\n" +
		"R58M123ABC\tdevice usb:1-1 product:beyond1q\n" +
		"0123456789\toffline\n" +
		"ABCDEF0123\tunauthorized\n" +
		"\n"
	assert.Equal(t, []string{"emulator-5554", "R58M123ABC"}, parseDeviceList(out))
}

func TestParseDeviceListEmpty(t *testing.T) {
	out := "List of devices attached\n\n"
	devices := parseDeviceList(out)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestParseDeviceListSkipsDaemonNoise(t *testing.T) {
	out := "* daemon not running; starting now at tcp:5037\n" +
		"* daemon started successfully\n" +
		"List of devices attached\n" +
		"R58M123ABC\tdevice\n"
	assert.Equal(t, []string{"R58M123ABC"}, parseDeviceList(out))
}

func TestNewAdbDefaults(t *testing.T) {
	b, err := NewAdb(&AdbInput{}, os.Stdout)
	require.NoError(t, err)
	adb := b.(*adbBridge)
	assert.Equal(t, "adb", adb.input.Path)
	assert.Equal(t, "1.0.39", adb.input.MinVersion)
}

func TestNewAdbRejectsBadMinVersion(t *testing.T) {
	_, err := NewAdb(&AdbInput{MinVersion: "not-a-version"}, os.Stdout)
	assert.Error(t, err)
}

func TestAdbFactoryDecodesOptions(t *testing.T) {
	b, err := New(Adb, map[string]any{"path": "/opt/platform-tools/adb"}, os.Stdout)
	require.NoError(t, err)
	adb := b.(*adbBridge)
	assert.Equal(t, "/opt/platform-tools/adb", adb.input.Path)
}

func TestAdbFactoryRejectsBadOptions(t *testing.T) {
	_, err := New(Adb, map[string]any{"path": 42}, os.Stdout)
	assert.Error(t, err)
}

func TestAdbSelectBindsSerial(t *testing.T) {
	b, err := NewAdb(&AdbInput{}, os.Stdout)
	require.NoError(t, err)
	sess, err := b.Select("R58M123ABC")
	require.NoError(t, err)
	assert.Equal(t, "R58M123ABC", sess.Device())
}

func TestAdbPushMissingLocalFileIsTransferError(t *testing.T) {
	b, err := NewAdb(&AdbInput{}, os.Stdout)
	require.NoError(t, err)
	sess, err := b.Select("R58M123ABC")
	require.NoError(t, err)

	err = sess.Push("does/not/exist", "/data/local/tmp/")
	var terr *TransferError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAdbDiagnostic(t *testing.T) {
	msg, ok := adbDiagnostic([]byte("error: device 'R58M123ABC' not found\n"))
	assert.True(t, ok)
	assert.Equal(t, "error: device 'R58M123ABC' not found", msg)

	msg, ok = adbDiagnostic([]byte("adb: error: closed\n"))
	assert.True(t, ok)
	assert.Equal(t, "adb: error: closed", msg)

	// Workload stderr is not a transport failure.
	_, ok = adbDiagnostic([]byte("check failed at row 17\nresult mismatch\n"))
	assert.False(t, ok)

	_, ok = adbDiagnostic(nil)
	assert.False(t, ok)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Android Debug Bridge version 1.0.41",
		firstLine("Android Debug Bridge version 1.0.41\nVersion 34.0.4-android-tools\n"))
	assert.Equal(t, "", firstLine(""))
}
