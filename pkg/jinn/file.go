package jinn

import (
	"fmt"
	"io"
	"os"

	"github.com/jinndb/jinn/pkg/fs"
)

// blockOffset returns the on-disk byte offset of block i.
func blockOffset(i, blockSize uint64) int64 {
	return int64(HeaderSize) + int64(i)*int64(blockSize)
}

// readBlock reads exactly db.blockSize bytes for block i into a fresh buffer.
func (db *DB) readBlock(i uint64) ([]byte, error) {
	buf := make([]byte, db.blockSize)

	_, err := db.file.Seek(blockOffset(i, db.blockSize), io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("jinn: seek block %d: %w", i, err)
	}

	_, err = io.ReadFull(db.file, buf)
	if err != nil {
		return nil, fmt.Errorf("jinn: read block %d: %w", i, err)
	}

	return buf, nil
}

// writeBlock writes buf (which must be exactly db.blockSize bytes) at block i.
func (db *DB) writeBlock(i uint64, buf []byte) error {
	_, err := db.file.Seek(blockOffset(i, db.blockSize), io.SeekStart)
	if err != nil {
		return fmt.Errorf("jinn: seek block %d: %w", i, err)
	}

	_, err = db.file.Write(buf)
	if err != nil {
		return fmt.Errorf("jinn: write block %d: %w", i, err)
	}

	return nil
}

// truncateTo shrinks the file so it holds exactly `blocks` blocks after the
// header.
func (db *DB) truncateTo(blocks uint64) error {
	size := int64(HeaderSize) + int64(blocks)*int64(db.blockSize)

	err := db.file.Truncate(size)
	if err != nil {
		return fmt.Errorf("jinn: truncate to %d blocks: %w", blocks, err)
	}

	return nil
}

// readFileHeader reads and decodes the header at the start of db.file.
func (db *DB) readFileHeader() (Header, error) {
	buf := make([]byte, HeaderSize)

	_, err := db.file.Seek(0, io.SeekStart)
	if err != nil {
		return Header{}, fmt.Errorf("jinn: seek header: %w", err)
	}

	_, err = io.ReadFull(db.file, buf)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}

	return ReadHeader(buf)
}

// writeFileHeader encodes and writes the current header fields to the start
// of db.file.
func (db *DB) writeFileHeader() error {
	h := Header{
		Compressed: db.compressed,
		BlockSize:  db.blockSize,
		Blocks:     db.blocks,
	}

	_, err := db.file.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("jinn: seek header: %w", err)
	}

	_, err = db.file.Write(EncodeHeader(h))
	if err != nil {
		return fmt.Errorf("jinn: write header: %w", err)
	}

	return nil
}

// ensureFileExists creates path if it doesn't exist yet, then opens it
// read-write.
func ensureFileExists(fsys fs.FS, path string) (fs.File, error) {
	exists, err := fsys.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("jinn: stat %q: %w", path, err)
	}

	if !exists {
		f, err := fsys.Create(path)
		if err != nil {
			return nil, fmt.Errorf("jinn: create %q: %w", path, err)
		}

		_ = f.Close()
	}

	return fsys.OpenFile(path, os.O_RDWR, 0o644)
}
