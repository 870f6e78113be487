package skinny

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMAC(t *testing.T) {
	var mac, err = NormalizeMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	assert.Equal(t, "001122334455", mac)

	mac, err = NormalizeMAC("00-11-22-33-44-55")
	require.NoError(t, err)
	assert.Equal(t, "001122334455", mac)

	_, err = NormalizeMAC("not-a-mac")
	assert.Error(t, err)
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "SEP001122334455", DeviceName("001122334455"))
}

func TestNewPhoneConfigRequiresServer(t *testing.T) {
	var _, err = NewPhoneConfig(Config{MAC: "001122334455"})
	assert.Error(t, err)
}

func TestNewPhoneConfigRejectsBadMAC(t *testing.T) {
	var _, err = NewPhoneConfig(Config{Server: "127.0.0.1", MAC: "bad"})
	assert.Error(t, err)
}

func TestNewPhoneConfigDefaultsPortAndLineCount(t *testing.T) {
	var cfg, err = NewPhoneConfig(Config{Server: "127.0.0.1", MAC: "001122334455"})
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Port)
	assert.Equal(t, 1, cfg.LineCount)
	assert.Equal(t, 5.0, cfg.ToneVolumeDB)
	assert.Equal(t, "SEP001122334455", cfg.DeviceName)
}

func TestDefaultConfig(t *testing.T) {
	var cfg = DefaultConfig()
	assert.Equal(t, 2000, cfg.Port)
	assert.Equal(t, ModelGeneric, cfg.Model)
	assert.Equal(t, PlayModeSilent, cfg.AudioPlayMode)
	assert.Equal(t, 1, cfg.LineCount)
}
