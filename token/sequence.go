// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package token defines the token sequence the parsing engine operates
// over: an immutable, indexable list of (spelling, start, end) triples
// produced by a tokenizer that is external to this module (spec.md §1).
package token

// Token is a single (spelling, start, end) triple. Start and End are
// character offsets into the original text; indices into a Sequence are
// separate token positions, not character offsets.
type Token struct {
	Spelling string
	Start    int
	End      int
}

// Sequence is an immutable ordered list of Tokens. The zero value is an
// empty sequence. Sequence is built incrementally via Append, which
// always copies into a new backing array, so no two Sequences share one.
type Sequence struct {
	tokens []Token
}

// New returns a Sequence containing the given tokens, copied so the
// caller's slice may be reused.
func New(tokens ...Token) Sequence {
	cp := make([]Token, len(tokens))
	copy(cp, tokens)

	return Sequence{tokens: cp}
}

// Append returns a new Sequence with t appended. The receiver is left
// unmodified.
func (s Sequence) Append(t Token) Sequence {
	next := make([]Token, len(s.tokens)+1)
	copy(next, s.tokens)
	next[len(s.tokens)] = t

	return Sequence{tokens: next}
}

// Len returns the number of tokens in the sequence.
func (s Sequence) Len() int {
	return len(s.tokens)
}

// At returns the token at position i. It panics if i is out of range, the
// same as slice indexing.
func (s Sequence) At(i int) Token {
	return s.tokens[i]
}

// Slice returns a copy of the tokens in the half-open range [start,
// end). Slice exists for tests and diagnostics, not for the core
// algorithm, which always addresses tokens by index.
func (s Sequence) Slice(start, end int) []Token {
	out := make([]Token, end-start)
	copy(out, s.tokens[start:end])

	return out
}

// Spellings returns the spellings of every token in the sequence, in
// order.
func (s Sequence) Spellings() []string {
	out := make([]string, len(s.tokens))
	for i, t := range s.tokens {
		out[i] = t.Spelling
	}

	return out
}
