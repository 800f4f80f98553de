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

// Package demotoken is a minimal word tokenizer used to exercise
// parsing.Driver end to end in examples and tests. It is not part of the
// public parsing surface (spec §1: tokenization is external to this
// module) — a real embedder supplies their own parsing.Tokenizer.
//
// Grounded on custom.go's CustomLexer: a single-rune-at-a-time scan over
// a github.com/ianlewis/runeio.RuneReader, tracking a byte/rune offset
// cursor the way CustomLexer tracks Position.Offset, trimmed to one scan
// loop instead of a full LexState state machine since word/punctuation
// splitting needs no backtracking.
package demotoken

import (
	"bufio"
	"io"
	"unicode"

	"github.com/ianlewis/pyramids/token"
	"github.com/ianlewis/runeio"
)

// Tokenizer splits text into maximal runs of letters/digits (words) and
// individual punctuation runes, skipping whitespace. It implements
// parsing.Tokenizer.
type Tokenizer struct {
	r      *runeio.RuneReader
	offset int
	err    error
}

// New returns a Tokenizer reading from r.
func New(r io.Reader) *Tokenizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &Tokenizer{r: runeio.NewReader(br)}
}

// Next implements parsing.Tokenizer: it returns the next word or
// punctuation token, or (zero, false) once input is exhausted.
func (t *Tokenizer) Next() (token.Token, bool) {
	t.skipSpace()

	if t.err != nil {
		return token.Token{}, false
	}

	start := t.offset

	first, ok := t.peekRune()
	if !ok {
		return token.Token{}, false
	}

	if !isWordRune(first) {
		t.advance()

		return token.Token{Spelling: string(first), Start: start, End: t.offset}, true
	}

	var b []rune

	for {
		r, ok := t.peekRune()
		if !ok || !isWordRune(r) {
			break
		}

		b = append(b, r)
		t.advance()
	}

	return token.Token{Spelling: string(b), Start: start, End: t.offset}, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

func (t *Tokenizer) skipSpace() {
	for {
		r, ok := t.peekRune()
		if !ok || !unicode.IsSpace(r) {
			return
		}

		t.advance()
	}
}

// peekRune peeks the next rune without consuming it, caching io.EOF (or
// any other read error) in t.err so subsequent calls short-circuit.
func (t *Tokenizer) peekRune() (rune, bool) {
	if t.err != nil {
		return 0, false
	}

	rs, err := t.r.Peek(1)
	if len(rs) == 0 {
		t.err = err
		if t.err == nil {
			t.err = io.EOF
		}

		return 0, false
	}

	return rs[0], true
}

// advance discards the previously peeked rune and moves the offset
// cursor forward by one.
func (t *Tokenizer) advance() {
	if _, err := t.r.Discard(1); err != nil {
		t.err = err
	}

	t.offset++
}
