package storagenode

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/googol-project/googol/rpcapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotToDisk_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	n := New("barrel0", 0, testConfig(), dir, nil)
	n.UpdateIndex("http://a", "A", "snippet a", []string{"go", "lang"}, []string{"http://b"})

	require.NoError(t, n.SnapshotToDisk())
	assert.FileExists(t, filepath.Join(dir, primaryStateFileName))

	restored := New("barrel0", 0, testConfig(), dir, nil)
	require.NoError(t, restored.LoadPrimaryStateFromDisk())

	results := restored.Search([]string{"go", "lang"})
	require.Len(t, results, 1)
	assert.Equal(t, "http://a", results[0].URL)
	assert.True(t, restored.filter.MightContain("go"))
}

func TestSnapshotToDisk_RestoresStateAfterwards(t *testing.T) {
	n := New("barrel0", 0, testConfig(), t.TempDir(), nil)
	require.NoError(t, n.SnapshotToDisk())
	assert.Equal(t, StateReady, n.State())
}

func TestLoadPrimaryStateFromDisk_MissingFile(t *testing.T) {
	n := New("barrel0", 0, testConfig(), t.TempDir(), nil)
	assert.Error(t, n.LoadPrimaryStateFromDisk())
}

func TestBackupAndRestoreURLQueue(t *testing.T) {
	n := New("barrel0", 0, testConfig(), t.TempDir(), nil)
	snapshot := rpcapi.URLQueueSnapshot{Pending: []string{"http://a"}, Visited: []string{"http://b"}}

	require.NoError(t, n.BackupURLQueue(snapshot))
	assert.Equal(t, snapshot, n.RestoreURLQueue())
}

func TestRestoreURLQueue_FallsBackToDiskWhenMemoryEmpty(t *testing.T) {
	dir := t.TempDir()
	primary := New("barrel0", 0, testConfig(), dir, nil)
	snapshot := rpcapi.URLQueueSnapshot{Pending: []string{"http://a"}}
	require.NoError(t, primary.BackupURLQueue(snapshot))

	restarted := New("barrel0", 0, testConfig(), dir, nil)
	assert.Equal(t, snapshot, restarted.RestoreURLQueue())
}

func TestStartAutosave_StopsOnSignal(t *testing.T) {
	n := New("barrel0", 0, testConfig(), t.TempDir(), nil)
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		n.StartAutosave(5*time.Millisecond, stop)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StartAutosave did not stop")
	}
	assert.FileExists(t, filepath.Join(n.dataDir, primaryStateFileName))
}
