package jinn

import "fmt"

// ScanAction is returned by an [Iterate] handler to control iteration.
type ScanAction int

const (
	// ScanContinue requests the next record be delivered.
	ScanContinue ScanAction = iota
	// ScanStop aborts iteration after the current record.
	ScanStop
)

// Handler is called once per live record during [DB.Iterate].
type Handler func(Record) (ScanAction, error)

// internalHandler is the lower-level per-block callback used by load, which
// needs the block index as well as the record, and by the out-of-core phase
// of Iterate.
// Returning (false, nil) stops iteration early without being an error.
type internalHandler func(blockIdx uint64, record Record) (keepGoing bool, err error)

// Iterate yields every live record exactly once: in-cache records first (in
// the index's own iteration order), then any records beyond the cache in
// block-index order. A handler returning [ScanStop] aborts delivery of
// further records; Iterate then returns completed=false.
//
// Ordering guarantee: cached records are not in any particular order
// relative to each other, but every out-of-core record is delivered in
// ascending block-index order, and every live record is delivered exactly
// once regardless of which phase it falls in.
func (db *DB) Iterate(handler Handler) (completed bool, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return false, err
	}

	return db.iterateLocked(handler)
}

func (db *DB) iterateLocked(handler Handler) (bool, error) {
	for _, loc := range db.index {
		if !loc.cached {
			continue
		}

		action, err := handler(db.cache[loc.cacheIndex])
		if err != nil {
			return false, err
		}

		if action == ScanStop {
			return false, nil
		}
	}

	if db.blocks > uint64(len(db.cache)) {
		completed := true

		err := db.iterateOutOfCore(uint64(len(db.cache)), func(_ uint64, record Record) (bool, error) {
			action, err := handler(record)
			if err != nil {
				return false, err
			}

			if action == ScanStop {
				completed = false

				return false, nil
			}

			return true, nil
		})
		if err != nil {
			return false, err
		}

		return completed, nil
	}

	return true, nil
}

// iterateOutOfCore reads blocks [startBlock, db.blocks) in ascending
// block-index order, skipping holes, decoding each via the block codec and
// handing it to fn along with its block index. fn returning false stops
// further reads.
func (db *DB) iterateOutOfCore(startBlock uint64, fn internalHandler) error {
	for b := startBlock; b < db.blocks; b++ {
		if db.blockHoles[b] {
			continue
		}

		buf, err := db.readBlock(b)
		if err != nil {
			return fmt.Errorf("jinn: iterate out-of-core at block %d: %w", b, err)
		}

		record, err := db.decodeBlock(buf)
		if err != nil {
			return fmt.Errorf("jinn: iterate out-of-core at block %d: %w", b, err)
		}

		keepGoing, err := fn(b, record)
		if err != nil {
			return err
		}

		if !keepGoing {
			return nil
		}
	}

	return nil
}
