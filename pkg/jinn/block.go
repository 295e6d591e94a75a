package jinn

import (
	"encoding/json"
	"fmt"
	"strings"
)

const spacePad = ' '

// encodedLength returns the length, in bytes, that record encodes to before
// padding (compressed or raw, matching whatever codec db.compressed selects).
// Used to decide whether an insert needs a block resize.
func (db *DB) encodedLength(record Record) (int, error) {
	payload, err := db.encodePayload(record)
	if err != nil {
		return 0, err
	}

	return len(payload), nil
}

// encodePayload renders record to canonical JSON and, if the database is
// compressed, SMAZ-encodes it. It does not pad to block size.
func (db *DB) encodePayload(record Record) ([]byte, error) {
	canonical, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("jinn: encode record: %w", err)
	}

	if !db.compressed {
		return canonical, nil
	}

	return smazEncode(string(canonical)), nil
}

// encodeBlock renders record into a buffer of exactly db.blockSize bytes,
// space-padded after the payload. Returns [ErrInvalidArgument] if the
// payload does not fit (callers must resize first).
func (db *DB) encodeBlock(record Record) ([]byte, error) {
	payload, err := db.encodePayload(record)
	if err != nil {
		return nil, err
	}

	if uint64(len(payload)) > db.blockSize {
		return nil, fmt.Errorf("%w: encoded record (%d bytes) exceeds block size (%d bytes)",
			ErrInvalidArgument, len(payload), db.blockSize)
	}

	buf := make([]byte, db.blockSize)
	copy(buf, payload)

	for i := len(payload); i < len(buf); i++ {
		buf[i] = spacePad
	}

	return buf, nil
}

// decodeBlock parses a raw on-disk block back into a record.
//
// Returns [ErrCorruptBlock] if decompression fails, no balanced '{'...'}'
// span is present, or the span is not valid JSON.
func (db *DB) decodeBlock(buf []byte) (Record, error) {
	var text string

	if db.compressed {
		decoded, ok := smazDecode(trimTrailingSpaces(buf))
		if !ok {
			return nil, fmt.Errorf("%w: smaz decompression failed", ErrCorruptBlock)
		}

		text = decoded
	} else {
		text = string(buf)
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')

	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no balanced braces", ErrCorruptBlock)
	}

	var record Record

	err := json.Unmarshal([]byte(text[start:end+1]), &record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlock, err)
	}

	return record, nil
}

func trimTrailingSpaces(buf []byte) []byte {
	end := len(buf)
	for end > 0 && buf[end-1] == spacePad {
		end--
	}

	return buf[:end]
}

// nextPow2 returns the smallest power of two that is >= n, with a floor of 1.
func nextPow2(n int) uint64 {
	if n <= 1 {
		return 1
	}

	v := uint64(n - 1)
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32

	return v + 1
}
