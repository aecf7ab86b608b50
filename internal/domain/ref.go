// Package domain defines the core persistence models for the application.
// This file handles the legacy campaign-reference encoding carried over from
// the previous document store.
package domain

import "strings"

// NormalizeRef canonicalizes a campaign reference as stored on a
// PaymentRecord. Historical writers persisted either the plain campaign id
// or a typed-reference textual form such as ObjectId("<id>") (optionally
// quoted). Aggregation must treat both as the same campaign, so both sides
// of every join are passed through this function before comparison.
//
// Normalization rules, applied in order:
//   - surrounding whitespace is trimmed
//   - an ObjectId(...) / ObjectID(...) wrapper is unwrapped
//   - surrounding single or double quotes are stripped
//
// The empty string normalizes to itself and never matches a real campaign.
func NormalizeRef(ref string) string {
	s := strings.TrimSpace(ref)
	for _, prefix := range []string{"ObjectId(", "ObjectID(", "objectid("} {
		if len(s) > len(prefix)+1 && strings.HasPrefix(s, prefix) && strings.HasSuffix(s, ")") {
			s = s[len(prefix) : len(s)-1]
			break
		}
	}
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}
