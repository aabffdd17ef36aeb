package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

func outcomeFor(id string, outcome string) interfaces.EscrowOutcome {
	return interfaces.EscrowOutcome{
		AssetID: interfaces.AssetID(id),
		Outcome: outcome,
		Buyer:   interfaces.Identity{0x0b},
		Seller:  interfaces.Identity{0x0a},
		Price:   100,
		Caller:  interfaces.Identity{0x0b},
		At:      150,
	}
}

func TestJournalChain(t *testing.T) {
	backend := NewMemoryBackend()
	headPath := filepath.Join(t.TempDir(), "journal.head")

	journal, err := NewJournal(backend, headPath, nil)
	require.NoError(t, err)

	outcomes, err := journal.Outcomes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, outcomes)

	require.NoError(t, journal.RecordOutcome(outcomeFor("parcel-1", interfaces.OutcomeCompleted)))
	require.NoError(t, journal.RecordOutcome(outcomeFor("parcel-2", interfaces.OutcomeCancelled)))
	require.NoError(t, journal.RecordOutcome(outcomeFor("parcel-3", interfaces.OutcomeExpired)))

	outcomes, err = journal.Outcomes(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	// Oldest first.
	assert.Equal(t, interfaces.AssetID("parcel-1"), outcomes[0].AssetID)
	assert.Equal(t, interfaces.OutcomeCompleted, outcomes[0].Outcome)
	assert.Equal(t, interfaces.AssetID("parcel-3"), outcomes[2].AssetID)
	assert.Equal(t, interfaces.OutcomeExpired, outcomes[2].Outcome)
}

func TestJournalResumesFromHeadPointer(t *testing.T) {
	backend := NewMemoryBackend()
	headPath := filepath.Join(t.TempDir(), "journal.head")

	journal, err := NewJournal(backend, headPath, nil)
	require.NoError(t, err)
	require.NoError(t, journal.RecordOutcome(outcomeFor("parcel-1", interfaces.OutcomeCompleted)))

	// A second journal over the same backend and head file continues the
	// chain instead of starting over.
	reopened, err := NewJournal(backend, headPath, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.RecordOutcome(outcomeFor("parcel-2", interfaces.OutcomeCancelled)))

	outcomes, err := reopened.Outcomes(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, interfaces.AssetID("parcel-1"), outcomes[0].AssetID)
	assert.Equal(t, interfaces.AssetID("parcel-2"), outcomes[1].AssetID)
}

func TestJournalRejectsCorruptHead(t *testing.T) {
	headPath := filepath.Join(t.TempDir(), "journal.head")
	require.NoError(t, os.WriteFile(headPath, []byte("not-a-content-id\n"), 0644))

	_, err := NewJournal(NewMemoryBackend(), headPath, nil)
	assert.Error(t, err)
}
