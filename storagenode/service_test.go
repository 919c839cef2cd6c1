package storagenode

import (
	"testing"

	"github.com/googol-project/googol/rpcapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SearchAndUpdateIndex(t *testing.T) {
	n := newTestNode(t)
	svc := NewService(n)

	var updateReply rpcapi.UpdateIndexReply
	require.NoError(t, svc.UpdateIndex(&rpcapi.UpdateIndexArgs{
		URL: "http://a", Title: "A", Snippet: "snippet",
		Terms: []string{"go"}, OutgoingLinks: []string{"http://b"},
	}, &updateReply))

	var searchReply rpcapi.BarrelSearchReply
	require.NoError(t, svc.Search(&rpcapi.BarrelSearchArgs{Terms: []string{"go"}}, &searchReply))
	require.Len(t, searchReply.Results, 1)
	assert.Equal(t, "http://a", searchReply.Results[0].URL)

	var backlinksReply rpcapi.BarrelGetBacklinksReply
	require.NoError(t, svc.GetBacklinks(&rpcapi.BarrelGetBacklinksArgs{URL: "http://b"}, &backlinksReply))
	assert.Equal(t, []string{"http://a"}, backlinksReply.URLs)
}

func TestService_QueueBackupAndRestore(t *testing.T) {
	n := newTestNode(t)
	svc := NewService(n)

	snapshot := rpcapi.URLQueueSnapshot{Pending: []string{"http://a"}}
	var backupReply rpcapi.BackupURLQueueReply
	require.NoError(t, svc.BackupURLQueue(&rpcapi.BackupURLQueueArgs{Snapshot: snapshot}, &backupReply))

	var restoreReply rpcapi.RestoreURLQueueReply
	require.NoError(t, svc.RestoreURLQueue(&rpcapi.RestoreURLQueueArgs{}, &restoreReply))
	assert.Equal(t, snapshot, restoreReply.Snapshot)
}

func TestService_GetBarrelStats(t *testing.T) {
	n := newTestNode(t)
	svc := NewService(n)
	n.UpdateIndex("http://a", "A", "snippet", []string{"go"}, nil)

	var reply rpcapi.GetBarrelStatsReply
	require.NoError(t, svc.GetBarrelStats(&rpcapi.GetBarrelStatsArgs{}, &reply))
	assert.Contains(t, reply.Stats, "Index: 1 words")
}
