// Package chain implements an append only, tamper evident hash chain.
//
// Every block commits to its predecessor through PreviousHash, and its own
// Hash is the digest of a canonical serialization of the block fields:
//
//	{"actor":A,"index":I,"payload":P,"previous_hash":H,"timestamp":T}
//
// The object is compact JSON with keys in lexical order. P is the JSON
// encoding of the payload as produced by encoding/json (HTML characters
// escaped), and T is the UTC timestamp formatted with time.RFC3339Nano. The
// first block links to the genesis sentinel, a string of zeros as long as the
// hex digest.
//
// A Chain is not safe for concurrent writers. Owners that need more than one
// producer must serialize access to it.
package chain
