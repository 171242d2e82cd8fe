package fetcher

import (
	"errors"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubBrowserLifecycle(t *testing.T, launchErr, connectErr error) *int {
	t.Helper()
	origLaunch, origConnect, origKill := launchBrowser, connectBrowser, killBrowser
	t.Cleanup(func() {
		launchBrowser, connectBrowser, killBrowser = origLaunch, origConnect, origKill
	})

	kills := 0
	launchBrowser = func(*launcher.Launcher) (string, error) { return "ws://127.0.0.1:9222/devtools", launchErr }
	connectBrowser = func(*rod.Browser) error { return connectErr }
	killBrowser = func(*launcher.Launcher) { kills++ }
	return &kills
}

func TestNewBrowserFetcher_ConnectFailureKillsBrowser(t *testing.T) {
	kills := stubBrowserLifecycle(t, nil, errors.New("connection refused"))

	f, err := NewBrowserFetcher(true, time.Second)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.Equal(t, 1, *kills)
}

func TestNewBrowserFetcher_LaunchFailure(t *testing.T) {
	kills := stubBrowserLifecycle(t, errors.New("no chrome"), nil)

	_, err := NewBrowserFetcher(true, time.Second)
	require.Error(t, err)
	assert.Equal(t, 0, *kills, "nothing was started")
}

func TestNewBrowserFetcher_KeepsLauncher(t *testing.T) {
	kills := stubBrowserLifecycle(t, nil, nil)

	f, err := NewBrowserFetcher(true, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, f.launcher)
	assert.Equal(t, time.Second, f.Timeout)
	assert.Equal(t, 0, *kills)
}
