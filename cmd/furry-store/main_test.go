package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func fileArgs(dir string, args ...string) []string {
	return append(args, "--local-driver", "file", "--local-dir", dir, "--log-level", "error")
}

func TestCLI_SetGetRemove(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, fileArgs(dir, "set", "count", "2")...)
	require.NoError(t, err)

	out, err := run(t, fileArgs(dir, "get", "count")...)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = run(t, fileArgs(dir, "set", "name", "furry", "--string")...)
	require.NoError(t, err)
	out, err = run(t, fileArgs(dir, "keys")...)
	require.NoError(t, err)
	assert.Equal(t, "count\nname\n", out)

	_, err = run(t, fileArgs(dir, "remove", "count")...)
	require.NoError(t, err)
	out, err = run(t, fileArgs(dir, "get", "count", "--default", "0")...)
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCLI_SetRejectsInvalidJSON(t *testing.T) {
	_, err := run(t, fileArgs(t.TempDir(), "set", "k", "{oops")...)
	assert.Error(t, err)
}

func TestCLI_UnknownArea(t *testing.T) {
	_, err := run(t, fileArgs(t.TempDir(), "keys", "--area", "cookie")...)
	assert.Error(t, err)
}

func TestCLI_InvalidConfig(t *testing.T) {
	_, err := run(t, "keys", "--local-driver", "file")
	assert.Error(t, err)
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestWatch_RendersStoredValues(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, fileArgs(dir, "set", "theme", `"dark"`)...)
	require.NoError(t, err)

	cmd := NewRootCommand()
	var out syncBuffer
	cmd.SetOut(&out)
	cmd.SetArgs(fileArgs(dir, "watch", "theme", "--width", "20"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `theme: "dark"`)
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
