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
	"errors"
	"io"
	"log/slog"

	"github.com/PedroGalveias/OwkenERC20/database/plugin/blob/badger"
	"github.com/PedroGalveias/OwkenERC20/database/plugin/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

// Database pairs the relational state store with the event journal
type Database struct {
	logger   *slog.Logger
	blob     *badger.BlobStoreBadger
	metadata *sqlite.MetadataStoreSqlite
	dataDir  string
}

// Blob returns the underling blob store instance
func (d *Database) Blob() *badger.BlobStoreBadger {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *sqlite.MetadataStoreSqlite {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		return err
	}
	return nil
}

// New creates a new database instance with optional persistence using the
// provided data directory. Both stores are in-memory when dataDir is empty.
func New(
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	dataDir string,
) (*Database, error) {
	metadataDb, err := sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithLogger(logger),
		sqlite.WithPromRegistry(promRegistry),
	)
	if err != nil {
		if metadataDb != nil {
			_ = metadataDb.Close()
		}
		return nil, err
	}
	blobDb, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithLogger(logger),
		badger.WithPromRegistry(promRegistry),
	)
	if err != nil {
		return nil, errors.Join(err, metadataDb.Close())
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  dataDir,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
