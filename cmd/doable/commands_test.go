package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dori/doable/internal/app"
	"github.com/dori/doable/internal/config"
	"github.com/dori/doable/internal/logging"
	"github.com/dori/doable/internal/persist"
	"github.com/dori/doable/internal/store"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type appFactory func(*config.Config, app.Options) (*app.App, error)

// memoryApp builds apps that share kv across runs and hand out ids in order
func memoryApp(kv *persist.MemoryKV, ids ...string) appFactory {
	next := 0
	return func(cfg *config.Config, _ app.Options) (*app.App, error) {
		a, err := app.New(cfg, app.Options{Ephemeral: true})
		if err != nil {
			return nil, err
		}
		a.Store = store.New(
			persist.New(kv, logging.Discard()),
			store.WithSettings(cfg.ViewSettings()),
			store.WithIDGenerator(func() string {
				id := ids[next]
				next++
				return id
			}),
		)
		return a, nil
	}
}

// execute runs the doable command line with a config file and data dir
// inside dir
func execute(t *testing.T, dir string, newApp appFactory, args ...string) (string, error) {
	t.Helper()
	if newApp == nil {
		newApp = app.New
	}

	cmd := newRootCmd(&rootOptions{newApp: newApp})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--data-dir", dir,
	}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestAddListAndStatsOnDisk(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, nil, "add", "Buy", "milk", "!high", "#home")
	require.NoError(t, err)
	assert.Contains(t, out, "Created:")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Priority: high")
	assert.Contains(t, out, "Category: home")

	out, err = execute(t, dir, nil, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "#home")

	out, err = execute(t, dir, nil, "stats", "--json")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(out, "total").Int())
	assert.Equal(t, int64(1), gjson.Get(out, "highPriority").Int())
	assert.Equal(t, int64(0), gjson.Get(out, "completionRate").Int())

	out, err = execute(t, dir, nil, "list", "--json")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", gjson.Get(out, "tasks.0.text").String())
}

func TestEphemeralLeavesDiskUntouched(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, nil, "--ephemeral", "add", "Scratch")
	require.NoError(t, err)

	out, err := execute(t, dir, nil, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your list is empty")
}

func TestAddRejectsBlankText(t *testing.T) {
	kv := persist.NewMemoryKV()

	_, err := execute(t, t.TempDir(), memoryApp(kv), "add", "   ")
	require.Error(t, err)
	assert.Equal(t, 0, kv.Writes)
}

func TestDoneTogglesBothWays(t *testing.T) {
	dir := t.TempDir()
	newApp := memoryApp(persist.NewMemoryKV(), "aaaa1111")

	_, err := execute(t, dir, newApp, "add", "Water plants")
	require.NoError(t, err)

	out, err := execute(t, dir, newApp, "done", "aaaa")
	require.NoError(t, err)
	assert.Equal(t, "Completed: Water plants\n", out)

	out, err = execute(t, dir, newApp, "toggle", "aaaa")
	require.NoError(t, err)
	assert.Equal(t, "Reopened: Water plants\n", out)
}

func TestUnknownAndAmbiguousPrefixes(t *testing.T) {
	dir := t.TempDir()
	kv := persist.NewMemoryKV()
	newApp := memoryApp(kv, "abc111", "abc222")

	for _, text := range []string{"First", "Second"} {
		_, err := execute(t, dir, newApp, "add", text)
		require.NoError(t, err)
	}
	writes := kv.Writes

	_, err := execute(t, dir, newApp, "done", "abc")
	assert.ErrorIs(t, err, store.ErrAmbiguous)

	_, err = execute(t, dir, newApp, "rm", "zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, writes, kv.Writes)

	out, err := execute(t, dir, newApp, "rm", "abc2")
	require.NoError(t, err)
	assert.Equal(t, "Deleted: Second\n", out)
}

func TestListFlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	dir := t.TempDir()
	yaml := "view:\n  filter: all\n  show_completed: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	newApp := memoryApp(persist.NewMemoryKV(), "open0001", "done0001")
	for _, text := range []string{"Open task", "Finished task"} {
		_, err := execute(t, dir, newApp, "add", text)
		require.NoError(t, err)
	}
	_, err := execute(t, dir, newApp, "done", "done")
	require.NoError(t, err)

	out, err := execute(t, dir, newApp, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Open task")
	assert.NotContains(t, out, "Finished task")

	out, err = execute(t, dir, newApp, "list", "--hide-completed=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Open task")
	assert.Contains(t, out, "Finished task")

	out, err = execute(t, dir, newApp, "list", "--hide-completed=false", "--filter", "completed")
	require.NoError(t, err)
	assert.NotContains(t, out, "Open task")
	assert.Contains(t, out, "Finished task")

	_, err = execute(t, dir, newApp, "list", "--filter", "someday")
	assert.Error(t, err)
}

func TestClearReportsNothingToDo(t *testing.T) {
	dir := t.TempDir()
	newApp := memoryApp(persist.NewMemoryKV(), "aaaa1111", "bbbb2222")

	for _, text := range []string{"Keep", "Drop"} {
		_, err := execute(t, dir, newApp, "add", text)
		require.NoError(t, err)
	}

	out, err := execute(t, dir, newApp, "clear")
	require.NoError(t, err)
	assert.Equal(t, "No completed tasks to clear\n", out)

	_, err = execute(t, dir, newApp, "done", "bbbb")
	require.NoError(t, err)

	out, err = execute(t, dir, newApp, "clear")
	require.NoError(t, err)
	assert.Equal(t, "Cleared 1 completed task(s)\n", out)

	out, err = execute(t, dir, newApp, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Keep")
	assert.NotContains(t, out, "Drop")
}

func TestSaveErrorFailsTheCommand(t *testing.T) {
	kv := persist.NewMemoryKV()
	kv.Err = errors.New("disk full")

	_, err := execute(t, t.TempDir(), memoryApp(kv, "aaaa1111"), "add", "Doomed")
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.Err)
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, nil, "config", "init")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Wrote "))

	_, err = execute(t, dir, nil, "config", "init")
	assert.Error(t, err)

	_, err = execute(t, dir, nil, "config", "init", "--force")
	assert.NoError(t, err)
}
