package jinn

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/jinndb/jinn/pkg/fs"
)

// DB is a handle to an open jinn database.
//
// DB is a single-owner engine: two public calls on the same DB must not
// overlap. DB serializes its own public methods with an internal mutex so
// concurrent callers get well-defined (if serialized) behavior rather than
// data races; callers that want operations to interleave in a specific
// order must coordinate externally.
type DB struct {
	mu sync.Mutex

	fsys fs.FS
	file fs.File
	path string

	tempFile bool

	compressed bool
	blockSize  uint64
	blocks     uint64

	maxCacheSize uint64

	index      map[string]*itemLocation
	cache      []Record
	blockHoles map[uint64]bool
	cacheHoles map[int]bool

	closed bool
}

// Open creates or opens a jinn database according to opts and loads it.
//
// Mirrors the reference implementation's two-step open()/load() split as a
// single call; see [DB.Close] for the matching teardown.
func Open(opts Options) (*DB, error) {
	fsys := fs.NewReal()

	path := opts.Path

	tempFile := false
	if path == "" {
		p, err := freshTempPath()
		if err != nil {
			return nil, err
		}

		path = p
		tempFile = true
	}

	if opts.CopyOf != "" {
		err := copyFile(fsys, opts.CopyOf, path)
		if err != nil {
			return nil, fmt.Errorf("jinn: open: copy %q to %q: %w", opts.CopyOf, path, err)
		}
	}

	file, err := ensureFileExists(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("jinn: open: %w", err)
	}

	maxCacheSize := opts.MaxCacheSize
	if maxCacheSize == 0 {
		maxCacheSize = DefaultMaxCacheSize
	}

	db := &DB{
		fsys:         fsys,
		file:         file,
		path:         path,
		tempFile:     tempFile,
		compressed:   opts.Compressed,
		maxCacheSize: maxCacheSize,
		index:        make(map[string]*itemLocation),
		blockHoles:   make(map[uint64]bool),
		cacheHoles:   make(map[int]bool),
	}

	err = db.load()
	if err != nil {
		_ = file.Close()

		return nil, err
	}

	if tempFile {
		registerTempFileCleanup(db)
	}

	return db, nil
}

// load reads the header (initializing one if absent/invalid) and populates
// the index and cache by scanning the file out-of-core from block 0.
func (db *DB) load() error {
	header, err := db.readFileHeader()
	if err != nil {
		db.blockSize = 0
		db.blocks = 0

		return db.writeFileHeader()
	}

	db.compressed = header.Compressed
	db.blockSize = header.BlockSize
	db.blocks = header.Blocks

	capacity := db.cacheCapacity()

	return db.iterateOutOfCore(0, func(blockIdx uint64, record Record) (bool, error) {
		id, ok := record["_id"].(string)
		if !ok {
			return false, fmt.Errorf("%w: record at block %d missing string _id", ErrCorruptBlock, blockIdx)
		}

		loc := &itemLocation{block: blockIdx, cacheIndex: -1}

		if uint64(len(db.cache)) < capacity {
			loc.cached = true
			loc.cacheIndex = db.appendToCache(record)
		}

		db.index[id] = loc

		return true, nil
	})
}

// Close writes the current header (persisting blocks, blockSize, compressed),
// closes the file, and clears in-memory state. Close is idempotent.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}

	err := db.writeFileHeader()

	closeErr := db.file.Close()
	if err == nil {
		err = closeErr
	}

	if db.tempFile {
		_ = os.Remove(db.path)
	}

	db.closed = true
	db.index = nil
	db.cache = nil
	db.blockHoles = nil
	db.cacheHoles = nil

	return err
}

// Path returns the filesystem path of the open database file.
func (db *DB) Path() string {
	return db.path
}

// SetMaxCacheSize updates the cache byte budget read on every future cache
// admission decision. Changing it does not proactively evict existing
// cache entries.
func (db *DB) SetMaxCacheSize(n uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.maxCacheSize = n
}

func (db *DB) checkOpen() error {
	if db.closed {
		return ErrClosed
	}

	return nil
}

// Find returns every record matching query, bounded by opts.Limit and
// ordered by opts.Sort when set. With both set, jinn keeps only the
// current best Limit candidates in memory rather than sorting the whole
// match set.
//
// A query of the shape {_id: "<id>"} takes a fast path: a single index
// lookup plus at most one block read, rather than a cache+out-of-core scan,
// so id lookups stay cheap once the file has spilled out of the cache.
func (db *DB) Find(query Query, opts FindOptions) ([]Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	return db.findLocked(query, opts)
}

func (db *DB) findLocked(query Query, opts FindOptions) ([]Record, error) {
	if rec, handled, err := db.findByIDFastPath(query); handled {
		if err != nil {
			return nil, err
		}

		if rec == nil {
			return []Record{}, nil
		}

		result := cloneRecord(rec)

		if opts.Projections != nil {
			result = applyProjection(result, opts.Projections)
		}

		return []Record{result}, nil
	}

	collector := newTopKCollector(opts.Limit, opts.Sort)

	_, err := db.iterateLocked(func(rec Record) (ScanAction, error) {
		matched, err := matchQuery(query, rec)
		if err != nil {
			return ScanStop, err
		}

		if !matched {
			return ScanContinue, nil
		}

		if collector.Offer(cloneRecord(rec)) {
			return ScanStop, nil
		}

		return ScanContinue, nil
	})
	if err != nil {
		return nil, err
	}

	results := collector.Result()

	if opts.Projections != nil {
		for i, r := range results {
			results[i] = applyProjection(r, opts.Projections)
		}
	}

	return results, nil
}

// findByIDFastPath recognizes the common {_id: "<id>"} query — a single key
// whose value is a plain string, not an operator object — and resolves it
// with one index lookup plus at most one block read, instead of falling
// through to the cache+out-of-core scan. handled reports whether query took
// this shape at all; when handled is true and record is nil, no record with
// that id exists.
func (db *DB) findByIDFastPath(query Query) (record Record, handled bool, err error) {
	if len(query) != 1 {
		return nil, false, nil
	}

	id, ok := query["_id"].(string)
	if !ok {
		return nil, false, nil
	}

	loc, exists := db.index[id]
	if !exists {
		return nil, true, nil
	}

	if loc.cached {
		return db.cache[loc.cacheIndex], true, nil
	}

	buf, err := db.readBlock(loc.block)
	if err != nil {
		return nil, true, err
	}

	record, err = db.decodeBlock(buf)
	if err != nil {
		return nil, true, err
	}

	return record, true, nil
}

// applyProjection returns a copy of record restricted to the fields
// explicitly included in projections. "_id" survives unless the caller
// explicitly excludes it.
func applyProjection(record Record, projections map[string]bool) Record {
	out := make(Record, len(projections)+1)

	if projections["_id"] || (!explicitlyExcluded(projections, "_id")) {
		if v, ok := record["_id"]; ok {
			out["_id"] = v
		}
	}

	for field, include := range projections {
		if field == "_id" || !include {
			continue
		}

		if v, ok := record[field]; ok {
			out[field] = v
		}
	}

	return out
}

func explicitlyExcluded(projections map[string]bool, field string) bool {
	included, present := projections[field]

	return present && !included
}

// copyFile implements Options.CopyOf's "open as a private copy" facility by
// reading src and writing it to dst atomically, so a reader never observes
// a partially-written copy at dst.
func copyFile(fsys fs.FS, src, dst string) error {
	r, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	writer := fs.NewAtomicWriter(fsys)

	return writer.WriteWithDefaults(dst, r)
}

func freshTempPath() (string, error) {
	f, err := os.CreateTemp("", "jinn-*.db")
	if err != nil {
		return "", fmt.Errorf("jinn: allocate temp path: %w", err)
	}

	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return name, nil
}

// registerTempFileCleanup arranges for the database's temp file to be
// removed even if the caller never calls [DB.Close]. A library has no
// portable hook for "process exit", so this attaches a finalizer at open
// time (registered when the resource is acquired rather than deferred to
// an explicit teardown the caller might skip). [DB.Close] removes the temp
// file directly and is the only guaranteed path; the finalizer is a
// best-effort backstop for callers that drop the DB without closing it.
func registerTempFileCleanup(db *DB) {
	runtime.SetFinalizer(db, func(d *DB) {
		if d.tempFile && !d.closed {
			_ = os.Remove(d.path)
		}
	})
}
