//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/unscraper/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)

	pid := manager.LauncherPID()
	require.NotZero(t, pid, "launcher PID should be set")

	// On Unix, FindProcess always succeeds, so we must use Signal to verify
	err = syscall.Kill(pid, syscall.Signal(0))
	require.NoError(t, err, "launcher process should be running before Close()")

	err = manager.Close()
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	err = syscall.Kill(pid, syscall.Signal(0))
	assert.Error(t, err, "launcher process should be terminated after Close()")
}
