package jinn

import "strings"

// smazCodebook holds up to 254 common short-string substrings; the greedy
// encoder always prefers the longest dictionary match, using the
// longest-first per-leading-byte index built by buildSmazIndex (compatible
// with the classic SMAZ
// algorithm: a small fixed codebook of frequent English substrings plus two
// escape codes for anything the codebook can't express).
//
// Codes 0..len(smazCodebook)-1 expand to the corresponding string.
// Code smazLiteralByte (254) is followed by one verbatim byte.
// Code smazLiteralRun (255) is followed by a length byte N, then N
// verbatim bytes (N in 1..256, encoded as N-1).
var smazCodebook = []string{
	" the", "the ", "of ", " and ", " to ", " a ", "ing ", " in ", "ion",
	"tion", " is ", "er ", " be ", " for ", "ed ", " on ", " that ", " it ",
	" with ", " as ", " was ", " for", " are ", "his ", "com", "at ", "en ",
	" has ", " not ", "ed", "the", "ing", "and", "tion", "re ", " or ",
	"ly ", "ve ", "ic ", "id", "name", "value", "type", "status", "true",
	"false", "null", "data", "color", "red", "blue", "green", "yellow",
	"black", "white", "index", "record", "field", "query", "update",
	"insert", "delete", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n",
	"o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z", " ", "\"",
	":", ",", "{", "}", "[", "]", "-", "_", ".", "/",
}

const (
	smazLiteralByte = 254
	smazLiteralRun  = 255
)

// smazByFirstByte maps each codebook index that a greedy match can start from,
// grouped by first byte, for fast longest-match lookup during encode.
var smazByFirstByte = buildSmazIndex()

func buildSmazIndex() map[byte][]int {
	idx := make(map[byte][]int)

	for i, s := range smazCodebook {
		if s == "" {
			continue
		}

		b := s[0]
		idx[b] = append(idx[b], i)
	}

	for b := range idx {
		entries := idx[b]
		// Longest substrings first so the greedy encoder maximizes each match.
		for i := 1; i < len(entries); i++ {
			j := i
			for j > 0 && len(smazCodebook[entries[j-1]]) < len(smazCodebook[entries[j]]) {
				entries[j-1], entries[j] = entries[j], entries[j-1]
				j--
			}
		}

		idx[b] = entries
	}

	return idx
}

// smazEncode compresses s using the jinn codebook, falling back to literal
// runs for any text the codebook cannot express.
func smazEncode(s string) []byte {
	out := make([]byte, 0, len(s))
	i := 0
	runStart := -1

	flushRun := func(end int) {
		if runStart < 0 {
			return
		}

		for runStart < end {
			n := end - runStart
			if n > 256 {
				n = 256
			}

			out = append(out, smazLiteralRun, byte(n-1))
			out = append(out, s[runStart:runStart+n]...)
			runStart += n
		}

		runStart = -1
	}

	for i < len(s) {
		best := -1
		bestLen := 0

		for _, candidate := range smazByFirstByte[s[i]] {
			entry := smazCodebook[candidate]
			if len(entry) > bestLen && strings.HasPrefix(s[i:], entry) {
				best = candidate
				bestLen = len(entry)
			}
		}

		if best >= 0 {
			flushRun(i)
			out = append(out, byte(best))
			i += bestLen

			continue
		}

		if runStart < 0 {
			runStart = i
		}

		i++
	}

	flushRun(i)

	return out
}

// smazDecode expands bytes produced by [smazEncode] back into the original
// string. Returns false if the stream is truncated or malformed.
func smazDecode(b []byte) (string, bool) {
	var sb strings.Builder

	i := 0
	for i < len(b) {
		code := b[i]

		switch {
		case code == smazLiteralByte:
			if i+1 >= len(b) {
				return "", false
			}

			sb.WriteByte(b[i+1])
			i += 2
		case code == smazLiteralRun:
			if i+1 >= len(b) {
				return "", false
			}

			n := int(b[i+1]) + 1
			if i+2+n > len(b) {
				return "", false
			}

			sb.Write(b[i+2 : i+2+n])
			i += 2 + n
		default:
			if int(code) >= len(smazCodebook) {
				return "", false
			}

			sb.WriteString(smazCodebook[code])
			i++
		}
	}

	return sb.String(), true
}
