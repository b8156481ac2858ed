// Package cmdtest runs commands against an in-memory ledger in tests.
package cmdtest

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/config"
	"uhb/trade-ledger/internal/container"
)

// UseBackend installs a container over b as root.AppContainer for the
// duration of the test.
func UseBackend(t *testing.T, b backing.Backend) *container.Container {
	t.Helper()
	cfg := config.Defaults()
	cfg.Storage.Backend = string(backing.KindMemory)

	c, err := container.NewContainer(cfg, container.WithBackend(b), container.WithLogOutput(io.Discard))
	require.NoError(t, err)

	previous := root.AppContainer
	root.AppContainer = c
	t.Cleanup(func() {
		root.AppContainer = previous
		_ = c.Close()
	})
	return c
}

// UseMemory is UseBackend over an empty, unlimited memory backend.
func UseMemory(t *testing.T) *container.Container {
	t.Helper()
	return UseBackend(t, backing.NewMemory(0))
}

// Run executes cmd with args and returns everything it printed.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return RunWithInput(t, cmd, "", args...)
}

// RunWithInput is Run with stdin set to input.
func RunWithInput(t *testing.T, cmd *cobra.Command, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
