package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/companion/backend/internal/config"
	"github.com/zhouzirui/companion/backend/internal/model/persona"
)

func TestPersonasCommandListsPresets(t *testing.T) {
	t.Setenv("PERSONA_DIR", "")

	var out bytes.Buffer
	personasCmd.SetOut(&out)
	require.NoError(t, runPersonas(personasCmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "aria"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "*"))
}

func TestPersonasCommandFailsWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: [nope"), 0o600))
	t.Setenv("PERSONA_DIR", dir)

	personasCmd.SetOut(&bytes.Buffer{})
	err := runPersonas(personasCmd, nil)
	require.ErrorIs(t, err, persona.ErrNoPersonas)
}

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv, config.ServerConfig{ShutdownTimeout: time.Second}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunServerReportsListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1"}
	err := runServer(context.Background(), srv, config.ServerConfig{ShutdownTimeout: time.Second})
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}
