package jinn

// DefaultMaxCacheSize is the default cache budget: 128 MiB.
const DefaultMaxCacheSize = 128 * 1024 * 1024

// Options configures [Open].
type Options struct {
	// Path is the filesystem path of the database file.
	//
	// If empty, [Open] allocates a unique temporary path. [DB.Close]
	// removes that file; a DB dropped without Close has it removed, best
	// effort, by a finalizer when the DB is garbage-collected.
	Path string

	// CopyOf, if set, is copied to Path before opening, giving a cheap
	// "open as a private copy" facility. The source file is left untouched.
	CopyOf string

	// Compressed enables SMAZ-style compression of new/rewritten blocks.
	// Only meaningful when creating a new file; an existing file's
	// compressed flag (from its header) always wins on load.
	Compressed bool

	// MaxCacheSize bounds the in-memory cache, in bytes. Defaults to
	// [DefaultMaxCacheSize]. Mutable at runtime via [DB.SetMaxCacheSize];
	// changing it does not proactively evict.
	MaxCacheSize uint64
}

// FindOptions configures [DB.Find].
type FindOptions struct {
	// Limit caps the number of returned records. Zero means no limit.
	Limit int

	// Sort, if non-nil, orders results; Less(a, b) reports whether a
	// should sort before b. Combined with Limit, jinn maintains a bounded
	// top-k instead of sorting the whole match set.
	Sort func(a, b Record) bool

	// Projections selects which fields appear in returned records. A key
	// is dropped from the result unless explicitly included (true). "_id"
	// is preserved unless explicitly excluded (Projections["_id"] = false).
	Projections map[string]bool
}

// UpdateOptions configures [DB.Update].
type UpdateOptions struct {
	// Limit caps the number of records updated. Zero means no limit.
	Limit int
}

// RemoveOptions configures [DB.Remove].
type RemoveOptions struct {
	// Limit caps the number of records removed. Zero means no limit.
	Limit int

	// Sort, if non-nil, selects which matching records are removed first
	// when Limit is also set (delegates to [DB.Find] internally).
	Sort func(a, b Record) bool
}

// ResizeOptions configures [DB.Resize].
//
// Reserved for future bounded-parallel block I/O; Resize is currently
// fully sequential, so there is nothing to configure yet.
type ResizeOptions struct{}
