// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/PedroGalveias/OwkenERC20/database"
	"github.com/PedroGalveias/OwkenERC20/database/models"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDeployer = types.MustParseAddress("0x00000000000000000000000000000000000000d1")

func newTestDatabase(t *testing.T, dataDir string) *database.Database {
	t.Helper()
	db, err := database.New(nil, nil, dataDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testRecord(eventType string, data any) database.JournalRecord {
	tmp, _ := json.Marshal(data)
	return database.JournalRecord{
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Type:      eventType,
		Data:      tmp,
	}
}

func testState() *models.State {
	return &models.State{
		Deployments: []models.Deployment{
			{Name: "ledger", Address: types.MustParseAddress("0x00000000000000000000000000000000000000e1"), Deployer: testDeployer},
		},
		TokenBalances: []models.TokenBalance{
			{Account: testDeployer, Amount: types.NewAmount(1000)},
		},
	}
}

func TestTxnDoCommitsBothStores(t *testing.T) {
	db := newTestDatabase(t, "")
	records := []database.JournalRecord{
		testRecord("token.transfer", map[string]string{"amount": "1000"}),
		testRecord("token.approval", map[string]string{"amount": "5"}),
	}
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetState(testState(), txn); err != nil {
			return err
		}
		return db.AppendJournal(records, txn)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, uint64(2), records[1].Seq)

	state, err := db.GetState(nil)
	require.NoError(t, err)
	assert.False(t, state.Empty())
	journal, err := db.Journal(0, 0, nil)
	require.NoError(t, err)
	require.Len(t, journal, 2)
	assert.Equal(t, "token.approval", journal[1].Type)
	assert.JSONEq(t, `{"amount":"5"}`, string(journal[1].Data))
	assert.True(t, journal[0].Timestamp.Equal(time.Unix(1700000000, 0)))
}

func TestTxnDoRollsBackBothStores(t *testing.T) {
	db := newTestDatabase(t, "")
	errBoom := errors.New("boom")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetState(testState(), txn); err != nil {
			return err
		}
		if err := db.AppendJournal([]database.JournalRecord{testRecord("x", nil)}, txn); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	state, err := db.GetState(nil)
	require.NoError(t, err)
	assert.True(t, state.Empty())
	journal, err := db.Journal(0, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, journal)
}

func TestTxnFinishedIsIdempotent(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Rollback())
	txn.Release()
}

func TestReadOnlyTxn(t *testing.T) {
	db := newTestDatabase(t, "")
	require.NoError(t, db.AppendJournal([]database.JournalRecord{testRecord("a", 1)}, nil))
	txn := db.Transaction(false)
	defer txn.Release()
	assert.Nil(t, txn.Metadata())
	journal, err := db.Journal(1, 1, txn)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, "a", journal[0].Type)
}

func TestReopenKeepsCommitTimestampsInStep(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(nil, nil, dir)
	require.NoError(t, err)
	require.NoError(t, db.SetState(testState(), nil))
	require.NoError(t, db.AppendJournal([]database.JournalRecord{testRecord("a", 1)}, nil))
	require.NoError(t, db.Close())

	reopened := newTestDatabase(t, dir)
	assert.Equal(t, dir, reopened.DataDir())
	state, err := reopened.GetState(nil)
	require.NoError(t, err)
	require.Len(t, state.TokenBalances, 1)
	assert.Equal(t, "1000", state.TokenBalances[0].Amount.String())
}

func TestCommitTimestampMismatch(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(nil, nil, dir)
	require.NoError(t, err)
	require.NoError(t, db.SetState(testState(), nil))
	// Advance only the metadata timestamp to simulate a torn commit
	txn := db.Metadata().Transaction()
	require.NoError(t, db.Metadata().SetCommitTimestamp(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	reopened, err := database.New(nil, nil, dir)
	require.Error(t, err)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.MetadataTimestamp)
	require.NotNil(t, reopened)
	require.NoError(t, reopened.Close())
}
