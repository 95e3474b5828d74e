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

package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/PedroGalveias/OwkenERC20/database/types"
)

// JournalKeyPrefix is prepended to the big-endian sequence number of every
// journal record, so key order matches append order
const JournalKeyPrefix = "evt"

func journalKey(seq uint64) []byte {
	key := make([]byte, len(JournalKeyPrefix)+8)
	copy(key, JournalKeyPrefix)
	binary.BigEndian.PutUint64(key[len(JournalKeyPrefix):], seq)
	return key
}

func journalSeq(key []byte) (uint64, error) {
	if len(key) != len(JournalKeyPrefix)+8 ||
		!bytes.HasPrefix(key, []byte(JournalKeyPrefix)) {
		return 0, fmt.Errorf("malformed journal key: %x", key)
	}
	return binary.BigEndian.Uint64(key[len(JournalKeyPrefix):]), nil
}

// LastJournalSeq returns the sequence number of the newest journal record,
// or 0 when the journal is empty
func (d *BlobStoreBadger) LastJournalSeq(txn types.Txn) (uint64, error) {
	prefix := []byte(JournalKeyPrefix)
	it := d.NewIterator(
		txn,
		types.BlobIteratorOptions{Prefix: prefix, Reverse: true},
	)
	defer it.Close()
	if err := it.Err(); err != nil {
		return 0, err
	}
	// Reverse iteration starts from the largest key not above the seek key
	it.Seek(journalKey(^uint64(0)))
	if !it.ValidForPrefix(prefix) {
		return 0, nil
	}
	return journalSeq(it.Item().Key())
}

// AppendJournal writes records after the newest existing record and returns
// the sequence number assigned to the first one
func (d *BlobStoreBadger) AppendJournal(
	txn types.Txn,
	records [][]byte,
) (uint64, error) {
	if txn == nil {
		return 0, types.ErrNilTxn
	}
	last, err := d.LastJournalSeq(txn)
	if err != nil {
		return 0, err
	}
	first := last + 1
	seq := first
	for _, record := range records {
		if err := d.Set(txn, journalKey(seq), record); err != nil {
			return 0, fmt.Errorf("append journal record %d: %w", seq, err)
		}
		seq++
		d.metrics.journalAppends.Inc()
		d.metrics.journalBytes.Add(float64(len(record)))
	}
	return first, nil
}

// WalkJournal calls fn for each record with a sequence number of at least
// from, in append order. At most limit records are visited when limit is
// positive.
func (d *BlobStoreBadger) WalkJournal(
	txn types.Txn,
	from uint64,
	limit int,
	fn func(seq uint64, record []byte) error,
) error {
	prefix := []byte(JournalKeyPrefix)
	it := d.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer it.Close()
	if err := it.Err(); err != nil {
		return err
	}
	visited := 0
	for it.Seek(journalKey(from)); it.ValidForPrefix(prefix); it.Next() {
		if limit > 0 && visited >= limit {
			break
		}
		item := it.Item()
		seq, err := journalSeq(item.Key())
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read journal record %d: %w", seq, err)
		}
		if err := fn(seq, val); err != nil {
			return err
		}
		visited++
	}
	return nil
}
