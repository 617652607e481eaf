package host

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rminstall/rminstall/pkg/config"
	"github.com/rminstall/rminstall/pkg/errors"
)

func TestActivationCommandSkin(t *testing.T) {
	cmd, err := ActivationCommand(LoadTypeSkin, `Demo\Demo.ini`)
	require.NoError(t, err)
	assert.Equal(t, `[!ActivateConfig "Demo" "Demo.ini"]`, cmd)

	cmd, err = ActivationCommand(LoadTypeSkin, `Suite\Clock\Clock.ini`)
	require.NoError(t, err)
	assert.Equal(t, `[!ActivateConfig "Suite\\Clock" "Clock.ini"]`, cmd)
}

func TestActivationCommandLayout(t *testing.T) {
	cmd, err := ActivationCommand(LoadTypeLayout, "My Layout")
	require.NoError(t, err)
	assert.Equal(t, `[!LoadLayout "My Layout"]`, cmd)
}

func TestActivationCommandSkinWithoutSeparator(t *testing.T) {
	_, err := ActivationCommand(LoadTypeSkin, "Demo.ini")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestActivationCommandUnknownType(t *testing.T) {
	_, err := ActivationCommand("Widget", "x")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestEncodeCommand(t *testing.T) {
	enc := encodeCommand("exit 0")
	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	// UTF-16LE: every other byte of the ASCII payload is zero
	require.Equal(t, len("exit 0")*2, len(raw))
	assert.Equal(t, byte('e'), raw[0])
	assert.Equal(t, byte(0), raw[1])
}

func TestQuotePS(t *testing.T) {
	assert.Equal(t, `'C:\Program Files\Rainmeter\Rainmeter.exe'`, quotePS(`C:\Program Files\Rainmeter\Rainmeter.exe`))
	assert.Equal(t, `'it''s'`, quotePS("it's"))
}

func TestStopScriptTargetsConfiguredWindow(t *testing.T) {
	h := config.HostConfig{
		WindowClass: "DummyRainWClass",
		WindowTitle: "Rainmeter control window",
		Executable:  "Rainmeter.exe",
		StopTimeout: 5 * time.Second,
	}

	script := stopScript(h)
	assert.Contains(t, script, "FindWindowW('DummyRainWClass', 'Rainmeter control window')")
	assert.Contains(t, script, "Get-Process -Name 'Rainmeter'")
	assert.Contains(t, script, "WaitForExit(5000)")
}

func TestStopScriptQuotesWindowIdentity(t *testing.T) {
	h := config.HostConfig{
		WindowClass: "It'sAClass",
		WindowTitle: "a 'quoted' title",
		Executable:  "Host.exe",
		StopTimeout: time.Second,
	}

	script := stopScript(h)
	assert.Contains(t, script, "FindWindowW('It''sAClass', 'a ''quoted'' title')")
}

func TestNopController(t *testing.T) {
	c := Nop{}
	wasRunning, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, wasRunning)
	assert.NoError(t, c.Start())
	assert.NoError(t, c.Activate(LoadTypeSkin, `Demo\Demo.ini`))
}
