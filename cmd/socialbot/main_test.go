// File: cmd/socialbot/main_test.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Setup Helpers ---

// resetMocks restores the original function implementations.
func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, 1, exitCode(errors.New("net::ERR_TIMED_OUT")))
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	t.Run("writes the panic log", func(t *testing.T) {
		var written string
		var code int
		osWriteFile = func(name string, data []byte, _ os.FileMode) error {
			assert.Equal(t, panicLogFile, name)
			written = string(data)
			return nil
		}
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("browser vanished")
		}()

		assert.Equal(t, 2, code)
		assert.Contains(t, written, "panic: browser vanished")
		assert.Contains(t, written, "goroutine", "the stack trace should be logged")
	})

	t.Run("falls back to stderr when the log cannot be written", func(t *testing.T) {
		var code int
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only file system") }
		osExit = func(c int) { code = c }

		require.NotPanics(t, func() {
			defer handlePanic()
			panic("boom")
		})
		assert.Equal(t, 2, code)
	})

	t.Run("no panic is a no-op", func(t *testing.T) {
		exited := false
		osExit = func(int) { exited = true }

		func() {
			defer handlePanic()
		}()
		assert.False(t, exited)
	})
}
