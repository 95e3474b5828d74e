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

package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// JournalRecord is one entry of the append-only event journal
type JournalRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Seq       uint64          `json:"seq"`
}

// AppendJournal stores records after the newest journal entry and assigns
// their sequence numbers
func (d *Database) AppendJournal(records []JournalRecord, txn *Txn) error {
	if len(records) == 0 {
		return nil
	}
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.AppendJournal(records, txn)
		})
	}
	last, err := d.blob.LastJournalSeq(txn.Blob())
	if err != nil {
		return fmt.Errorf("read journal tail: %w", err)
	}
	encoded := make([][]byte, 0, len(records))
	for i := range records {
		records[i].Seq = last + 1 + uint64(i) //nolint:gosec // i is a slice index
		tmp, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("encode journal record: %w", err)
		}
		encoded = append(encoded, tmp)
	}
	if _, err := d.blob.AppendJournal(txn.Blob(), encoded); err != nil {
		return err
	}
	return nil
}

// Journal returns up to limit records starting at sequence number from. A
// non-positive limit returns everything.
func (d *Database) Journal(from uint64, limit int, txn *Txn) ([]JournalRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	var ret []JournalRecord
	err := d.blob.WalkJournal(
		txn.Blob(),
		from,
		limit,
		func(seq uint64, record []byte) error {
			var tmp JournalRecord
			if err := json.Unmarshal(record, &tmp); err != nil {
				return fmt.Errorf("decode journal record %d: %w", seq, err)
			}
			tmp.Seq = seq
			ret = append(ret, tmp)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
