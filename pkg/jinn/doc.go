// Package jinn provides an embedded, persistent document store.
//
// A jinn database holds a single collection of JSON records in one file and
// answers NoSQL-style queries. Records are fixed-size blocks on disk; a
// bounded in-memory cache holds the lowest-indexed blocks and scans
// transparently spill to out-of-core disk reads once the working set exceeds
// the cache budget.
//
// # Basic Usage
//
//	db, err := jinn.Open(jinn.Options{Path: "/tmp/my.jinn"})
//	if err != nil {
//	    // handle [ErrCorruptBlock] or an I/O error
//	}
//	defer db.Close()
//
//	if _, err := db.Insert(jinn.M{"name": "redshirt", "color": "red"}); err != nil {
//	    // ...
//	}
//
//	records, err := db.Find(jinn.M{"color": "red"}, jinn.FindOptions{Limit: 10})
//
// # Concurrency
//
// jinn is a single-owner engine. [DB] serializes its public methods with an
// internal mutex, so calls from several goroutines run one at a time;
// callers that need a specific order must coordinate themselves (see [DB]
// docs).
//
// # File Format
//
// Every jinn file starts with a 22-byte header (magic, version, flags, block
// size, block count) followed by a dense array of fixed-size blocks, each
// holding one JSON-encoded record padded with spaces. See [ReadHeader] and
// [EncodeHeader]. [Open] does not reject a file whose header fails to
// decode: it writes a fresh header and starts with an empty database.
package jinn
