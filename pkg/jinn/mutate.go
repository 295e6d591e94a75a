package jinn

import "fmt"

// Insert adds a single record and returns its id. If record has no string
// "_id", a UUIDv1 is generated for it. If "_id" names a record that already
// exists, that record is overwritten in place rather than duplicated.
func (db *DB) Insert(record Record) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return "", err
	}

	return db.insertOne(record)
}

// InsertMany inserts each record in order, returning the assigned ids.
// Insertion stops at the first error; ids for records inserted before the
// failure are still returned.
func (db *DB) InsertMany(records []Record) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))

	for _, r := range records {
		id, err := db.insertOne(r)
		if err != nil {
			return ids, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// insertOne implements the insert algorithm:
//  1. assign an id if absent
//  2. look up its location; if one already exists, overwrite that record in
//     place (the same rewrite path [DB.Update] uses) instead of allocating a
//     new block
//  3. otherwise, size the block store for a brand new (blockSize == 0)
//     database, or grow the block size if the record doesn't fit the
//     current one
//  4. encode the record into a block-sized buffer
//  5. allocate a block (reusing a hole if one exists, else extending the
//     file) and write the buffer there
//  6. record the new location in the index, admitting it to the cache if
//     there's room and the block directly follows the cached prefix
func (db *DB) insertOne(record Record) (string, error) {
	rec := cloneRecord(record)

	id, _ := rec["_id"].(string)
	if id == "" {
		newID, err := newRecordID()
		if err != nil {
			return "", err
		}

		id = newID
		rec["_id"] = id
	}

	if loc, exists := db.index[id]; exists {
		return id, db.overwriteAt(loc, rec)
	}

	length, err := db.encodedLength(rec)
	if err != nil {
		return "", err
	}

	switch {
	case db.blockSize == 0:
		db.blockSize = nextPow2(length)
	case uint64(length) > db.blockSize:
		if err := db.resizeBlockSize(nextPow2(length)); err != nil {
			return "", err
		}
	}

	buf, err := db.encodeBlock(rec)
	if err != nil {
		return "", err
	}

	blockIdx, err := db.allocateBlock()
	if err != nil {
		return "", err
	}

	if err := db.writeBlock(blockIdx, buf); err != nil {
		return "", err
	}

	loc := &itemLocation{block: blockIdx, cacheIndex: -1}

	if db.cacheHasRoom() && blockIdx == uint64(len(db.cache)) {
		loc.cached = true
		loc.cacheIndex = db.appendToCache(rec)
	}

	db.index[id] = loc

	if err := db.writeFileHeader(); err != nil {
		return "", err
	}

	return id, nil
}

// overwriteAt re-encodes rec at loc's existing block, growing the block
// store first if rec no longer fits. This is the same in-place rewrite
// [DB.Update] performs; insertOne uses it so an Insert naming an existing
// "_id" replaces that record instead of erroring, per the reference
// "insert or overwrite" lifecycle.
func (db *DB) overwriteAt(loc *itemLocation, rec Record) error {
	length, err := db.encodedLength(rec)
	if err != nil {
		return err
	}

	if uint64(length) > db.blockSize {
		if err := db.resizeBlockSize(nextPow2(length)); err != nil {
			return err
		}
	}

	buf, err := db.encodeBlock(rec)
	if err != nil {
		return err
	}

	if err := db.writeBlock(loc.block, buf); err != nil {
		return err
	}

	if loc.cached {
		db.cache[loc.cacheIndex] = rec
	}

	return db.writeFileHeader()
}

// allocateBlock returns a block index to write a new record into: the
// lowest-numbered hole if one exists, otherwise a freshly extended block at
// the file's tail.
func (db *DB) allocateBlock() (uint64, error) {
	if len(db.blockHoles) > 0 {
		hole, first := uint64(0), true

		for b := range db.blockHoles {
			if first || b < hole {
				hole = b
				first = false
			}
		}

		delete(db.blockHoles, hole)

		return hole, nil
	}

	idx := db.blocks
	db.blocks++

	if err := db.truncateTo(db.blocks); err != nil {
		db.blocks--

		return 0, err
	}

	return idx, nil
}

// Remove deletes every record matching query (bounded by opts.Limit, and by
// opts.Sort when Limit selects which matches go first), then compacts the
// holes it leaves behind via fillHoles. It returns the number of records
// removed.
func (db *DB) Remove(query Query, opts RemoveOptions) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return 0, err
	}

	matches, err := db.findLocked(query, FindOptions{Limit: opts.Limit, Sort: opts.Sort})
	if err != nil {
		return 0, err
	}

	for _, rec := range matches {
		id, _ := rec["_id"].(string)

		loc, ok := db.index[id]
		if !ok {
			continue
		}

		if loc.cached {
			db.cacheHoles[int(loc.cacheIndex)] = true
		}

		db.blockHoles[loc.block] = true
		delete(db.index, id)
	}

	if err := db.fillHoles(); err != nil {
		return len(matches), err
	}

	return len(matches), db.writeFileHeader()
}

// fillHoles compacts away every pending block and cache hole by swapping in
// the last live record from the tail of the corresponding storage (disk
// blocks, then the cache), then trimming the now-unused tail. A hole at or
// past the last live position simply gets dropped by the trim instead of
// receiving a donor.
func (db *DB) fillHoles() error {
	for len(db.blockHoles) > 0 {
		hole, first := uint64(0), true

		for b := range db.blockHoles {
			if first || b < hole {
				hole = b
				first = false
			}
		}

		donors := db.getLastNLiveBlocks(1)

		if len(donors) == 0 || donors[0] <= hole {
			break
		}

		donor := donors[0]

		buf, err := db.readBlock(donor)
		if err != nil {
			return err
		}

		if err := db.writeBlock(hole, buf); err != nil {
			return err
		}

		if record, err := db.decodeBlock(buf); err == nil {
			if id, ok := record["_id"].(string); ok {
				if loc, ok := db.index[id]; ok {
					loc.block = hole

					// A record moved down from beyond the cache takes the lowest
					// vacated cache slot, so the cache keeps mirroring the leading blocks.
					if !loc.cached && len(db.cacheHoles) > 0 {
						slot, firstSlot := 0, true
						for i := range db.cacheHoles {
							if firstSlot || i < slot {
								slot, firstSlot = i, false
							}
						}

						db.cache[slot] = record
						loc.cached, loc.cacheIndex = true, int64(slot)
						delete(db.cacheHoles, slot)
					}
				}
			}
		}

		delete(db.blockHoles, hole)
		db.blockHoles[donor] = true
	}

	for db.blocks > 0 && db.blockHoles[db.blocks-1] {
		delete(db.blockHoles, db.blocks-1)
		db.blocks--
	}

	if err := db.truncateTo(db.blocks); err != nil {
		return err
	}

	for len(db.cacheHoles) > 0 {
		hole, first := 0, true

		for i := range db.cacheHoles {
			if first || i < hole {
				hole = i
				first = false
			}
		}

		donors := db.getLastNLiveCacheIndices(1)

		if len(donors) == 0 || donors[0] <= hole {
			break
		}

		donor := donors[0]
		rec := db.cache[donor]
		db.cache[hole] = rec

		if id, ok := rec["_id"].(string); ok {
			if loc, ok := db.index[id]; ok {
				loc.cacheIndex = int64(hole)
			}
		}

		delete(db.cacheHoles, hole)
		db.cacheHoles[donor] = true
	}

	for len(db.cache) > 0 && db.cacheHoles[len(db.cache)-1] {
		delete(db.cacheHoles, len(db.cache)-1)
		db.cache = db.cache[:len(db.cache)-1]
	}

	return nil
}

// Update applies update to every record matching query (bounded by
// opts.Limit), rewriting each in place: find, transform, re-encode, and
// write back to the same block (resizing the whole database first if the
// transformed record no longer fits). It returns the number of records
// updated.
func (db *DB) Update(query Query, update Update, opts UpdateOptions) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return 0, err
	}

	matches, err := db.findLocked(query, FindOptions{Limit: opts.Limit})
	if err != nil {
		return 0, err
	}

	updated := 0

	for _, rec := range matches {
		id, _ := rec["_id"].(string)

		newRec, err := applyUpdate(rec, update)
		if err != nil {
			return updated, err
		}

		newRec["_id"] = id

		length, err := db.encodedLength(newRec)
		if err != nil {
			return updated, err
		}

		if uint64(length) > db.blockSize {
			if err := db.resizeBlockSize(nextPow2(length)); err != nil {
				return updated, err
			}
		}

		buf, err := db.encodeBlock(newRec)
		if err != nil {
			return updated, err
		}

		loc, ok := db.index[id]
		if !ok {
			continue
		}

		if err := db.writeBlock(loc.block, buf); err != nil {
			return updated, err
		}

		if loc.cached {
			db.cache[loc.cacheIndex] = newRec
		}

		updated++
	}

	return updated, db.writeFileHeader()
}

// Resize changes the on-disk block size, re-encoding every live record at
// the new size. Growing processes blocks tail-first (the highest block
// index moves to its new, larger offset first, so later writes never land
// on data a lower-indexed block hasn't been read from yet); shrinking
// processes head-first for the same reason in the other direction.
func (db *DB) Resize(newBlockSize uint64, _ ResizeOptions) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return err
	}

	if newBlockSize == 0 {
		return fmt.Errorf("%w: block size must be non-zero", ErrInvalidArgument)
	}

	if err := db.resizeBlockSize(newBlockSize); err != nil {
		return err
	}

	return db.writeFileHeader()
}

func (db *DB) resizeBlockSize(newBlockSize uint64) error {
	oldBlockSize := db.blockSize
	if newBlockSize == oldBlockSize {
		return nil
	}

	growing := newBlockSize > oldBlockSize

	live := make([]uint64, 0, db.blocks)

	for b := uint64(0); b < db.blocks; b++ {
		if !db.blockHoles[b] {
			live = append(live, b)
		}
	}

	order := live
	if growing {
		order = reverseUint64(live)

		db.blockSize = newBlockSize

		if err := db.truncateTo(db.blocks); err != nil {
			db.blockSize = oldBlockSize

			return err
		}

		db.blockSize = oldBlockSize
	}

	for _, b := range order {
		db.blockSize = oldBlockSize

		raw, err := db.readBlock(b)
		if err != nil {
			return err
		}

		record, err := db.decodeBlock(raw)
		if err != nil {
			return err
		}

		db.blockSize = newBlockSize

		buf, err := db.encodeBlock(record)
		if err != nil {
			return fmt.Errorf("%w: record no longer fits after resize to %d bytes", ErrInvalidArgument, newBlockSize)
		}

		if err := db.writeBlock(b, buf); err != nil {
			return err
		}
	}

	db.blockSize = newBlockSize

	if !growing {
		if err := db.truncateTo(db.blocks); err != nil {
			return err
		}
	}

	db.rebuildCacheAfterResize()

	return nil
}

// rebuildCacheAfterResize re-decodes the leading live blocks (in ascending
// block-index order) up to the cache's new capacity, since a block size
// change also changes how many records fit the cache's byte budget.
func (db *DB) rebuildCacheAfterResize() {
	capacity := db.cacheCapacity()
	newCache := make([]Record, 0, capacity)
	cachedIDs := make(map[string]bool, capacity)

	for b := uint64(0); b < db.blocks && uint64(len(newCache)) < capacity; b++ {
		if db.blockHoles[b] {
			continue
		}

		buf, err := db.readBlock(b)
		if err != nil {
			continue
		}

		record, err := db.decodeBlock(buf)
		if err != nil {
			continue
		}

		id, _ := record["_id"].(string)
		newCache = append(newCache, record)
		cachedIDs[id] = true

		if loc, ok := db.index[id]; ok {
			loc.cached = true
			loc.cacheIndex = int64(len(newCache) - 1)
		}
	}

	for id, loc := range db.index {
		if !cachedIDs[id] {
			loc.cached = false
			loc.cacheIndex = -1
		}
	}

	db.cache = newCache
	db.cacheHoles = make(map[int]bool)
}

func reverseUint64(in []uint64) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}

	return out
}
