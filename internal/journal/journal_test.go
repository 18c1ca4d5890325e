package journal_test

import (
	"os"
	"testing"

	"github.com/nathanyu/account-transfer/internal/domain"
	"github.com/nathanyu/account-transfer/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempJournal(t *testing.T) (*journal.Journal, string) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "journal-*.log")
	require.NoError(t, err)
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	jnl, err := journal.Open(tmpFile.Name())
	require.NoError(t, err)
	return jnl, tmpFile.Name()
}

func TestJournal_AppendAndLoad(t *testing.T) {
	jnl, path := tempJournal(t)

	records := []domain.TransferRecord{
		{
			TransferID:  "tr-1",
			FromAccount: "alice",
			ToAccount:   "bob",
			Amount:      "100",
			Status:      domain.RecordStatusCompleted,
		},
		{
			TransferID:  "tr-2",
			FromAccount: "charlie",
			ToAccount:   "alice",
			Amount:      "250.50",
			Status:      domain.RecordStatusRejected,
			Reason:      "insufficient funds",
		},
	}

	for _, rec := range records {
		require.NoError(t, jnl.Append(rec))
	}

	// Close and reopen to prove the records survive the writer.
	require.NoError(t, jnl.Close())

	jnl2, err := journal.Open(path)
	require.NoError(t, err)
	defer jnl2.Close()

	loaded, err := jnl2.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, records[0], loaded[0])
	assert.Equal(t, records[1], loaded[1])
}

func TestJournal_LoadAllEmpty(t *testing.T) {
	jnl, _ := tempJournal(t)
	defer jnl.Close()

	records, err := jnl.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJournal_Clear(t *testing.T) {
	jnl, _ := tempJournal(t)
	defer jnl.Close()

	require.NoError(t, jnl.Append(domain.TransferRecord{
		TransferID: "tr-1",
		Status:     domain.RecordStatusCompleted,
	}))

	require.NoError(t, jnl.Clear())

	records, err := jnl.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, records)

	// The journal stays writable after a clear.
	require.NoError(t, jnl.Append(domain.TransferRecord{
		TransferID: "tr-2",
		Status:     domain.RecordStatusRejected,
	}))

	records, err = jnl.LoadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tr-2", records[0].TransferID)
}
