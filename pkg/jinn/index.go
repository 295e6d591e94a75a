package jinn

// itemLocation records where a live record currently lives: its block index
// on disk, and, if it is also mirrored in the in-memory cache, its position
// there.
type itemLocation struct {
	block      uint64
	cached     bool
	cacheIndex int64 // -1 when !cached
}

// cacheCapacity returns the maximum number of records the cache may hold
// given the current block size and configured byte budget.
func (db *DB) cacheCapacity() uint64 {
	if db.blockSize == 0 {
		return 0
	}

	return db.maxCacheSize / db.blockSize
}

// cacheHasRoom reports whether one more record may be admitted to the cache
// without exceeding its byte budget.
func (db *DB) cacheHasRoom() bool {
	return uint64(len(db.cache)) < db.cacheCapacity()
}

// appendToCache pushes record onto the cache tail and returns its new
// cache index. The caller is responsible for updating the record's
// itemLocation.
func (db *DB) appendToCache(record Record) int64 {
	db.cache = append(db.cache, record)

	return int64(len(db.cache) - 1)
}

// popCacheTail removes the last cache slot, marking its owning record's
// location as no longer cached. No-op if the cache is empty.
func (db *DB) popCacheTail() {
	n := len(db.cache)
	if n == 0 {
		return
	}

	tail := db.cache[n-1]
	db.cache = db.cache[:n-1]

	if id, ok := tail["_id"].(string); ok {
		if loc, ok := db.index[id]; ok {
			loc.cached = false
			loc.cacheIndex = -1
		}
	}
}

// getLastNLiveBlocks returns the n highest block indices currently holding
// live (non-hole) records, in descending order. Used by [DB.fillHoles] as
// the donor set for holes being compacted away.
func (db *DB) getLastNLiveBlocks(n int) []uint64 {
	out := make([]uint64, 0, n)

	for b := db.blocks; b > 0 && len(out) < n; b-- {
		blockIdx := b - 1
		if db.blockHoles[blockIdx] {
			continue
		}

		out = append(out, blockIdx)
	}

	return out
}

// getLastNLiveCacheIndices returns the n highest cache indices not already
// marked as cache holes, in descending order. Used by [DB.fillHoles] to
// repack the cache after removal.
func (db *DB) getLastNLiveCacheIndices(n int) []int {
	out := make([]int, 0, n)

	for i := len(db.cache); i > 0 && len(out) < n; i-- {
		idx := i - 1
		if db.cacheHoles[idx] {
			continue
		}

		out = append(out, idx)
	}

	return out
}

// locationOf looks up a record's current location by id.
func (db *DB) locationOf(id string) (*itemLocation, bool) {
	loc, ok := db.index[id]

	return loc, ok
}
