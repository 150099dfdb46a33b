// Package ident computes content-addressed identifiers for checklist items.
//
// An address ID is derived from the five identity fields of an item
// (checklist, section, procedure, action, spec). The same five-tuple always
// produces the same 16-character ID, so an item keeps its identity across
// re-imports, exports, and full-checklist replaces.
//
// The scheme is XXH3-128 over the delimiter-joined fields, truncated to the
// low-order 80 bits of the canonical digest and rendered in a 32-symbol
// alphabet that omits easily-confused letters (I, L, O, U). IDs are safe for
// URLs and filenames. Collisions at 80 bits are treated as impossible in
// practice; there is no detection path, and widening the digest would break
// every persisted identifier.
package ident

import "github.com/zeebo/xxh3"

// alphabet holds the 32 encoding symbols: digits plus the uppercase letters
// that survive removing I, L, O, and U.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// fieldSeparator joins the identity fields. A double pipe cannot appear in
// the fields' expected content, so distinct tuples cannot collide by
// concatenation alone.
const fieldSeparator = "||"

// IDLength is the length of every address ID (80 bits at 5 bits per symbol).
const IDLength = 16

// AddressID derives the deterministic identifier for one checklist item.
// Empty fields are valid and simply participate in the canonical string.
func AddressID(checklist, section, procedure, action, spec string) string {
	canonical := checklist + fieldSeparator +
		section + fieldSeparator +
		procedure + fieldSeparator +
		action + fieldSeparator +
		spec

	// Canonical (big-endian) digest bytes; keep the low-order 10 of 16.
	digest := xxh3.Hash128([]byte(canonical)).Bytes()
	return encodeBase32(digest[6:16])
}

// encodeBase32 packs 10 bytes into 16 symbols, 5 bits each, MSB first.
func encodeBase32(b []byte) string {
	out := make([]byte, 0, IDLength)

	var buffer uint32
	bits := 0
	for _, v := range b {
		buffer = buffer<<8 | uint32(v)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[(buffer>>bits)&0x1F])
		}
	}

	return string(out)
}
