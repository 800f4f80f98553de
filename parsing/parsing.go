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

// Package parsing implements spec.md §4.3 and §4.8: firing leaf rules as
// tokens arrive, and the top-level driver that tokenizes input text,
// drains the scheduler, and snapshots the result into a forest.Parse.
//
// Grounded on original_source/pyramids/parsing.py's Parser.add_token and
// Parser.parse, restructured onto scheduler.ParserState the way
// lexparse.go's LexParse restructured a lexer and a parser onto a single
// entrypoint — but without LexParse's goroutine/channel pipeline, since a
// single parse's candidates must be processed strictly in priority order,
// not concurrently.
package parsing

import (
	"time"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/model"
	"github.com/ianlewis/pyramids/rules"
	"github.com/ianlewis/pyramids/scheduler"
	"github.com/ianlewis/pyramids/token"
	"github.com/rs/zerolog"
)

// Tokenizer produces the (spelling, start, end) triples a Parse consumes.
// internal/demotoken implements this over plain text; any other source
// (pre-tokenized input, a different language's word-splitter) can satisfy
// it too, mirroring spec §1's "a tokenizer external to this module".
type Tokenizer interface {
	// Next returns the next token and true, or a zero Token and false
	// once input is exhausted.
	Next() (token.Token, bool)
}

// Driver runs one parse at a time against a fixed Model (spec §6: a
// Model is immutable and shared across concurrently running parses;
// each parse gets its own Driver/ParserState over it).
type Driver struct {
	m   *model.Model
	log zerolog.Logger
}

// New returns a Driver over m. log receives per-parse diagnostics; the
// zero Logger discards everything.
func New(m *model.Model, log zerolog.Logger) *Driver {
	return &Driver{m: m, log: log}
}

// AddToken implements spec §4.3: try every primary leaf rule against
// spelling first; if none match, fall back to the secondary leaf rules.
// Each match is promoted with its discovered case properties, extended
// through the property-inheritance closure, and pushed as a leaf
// ParseNode spanning [start, end), where start and end are token
// positions (Parse passes i and i+1 for the i-th token), not character
// offsets. A token matching no rule at all
// produces no leaves and simply becomes a gap (spec §4.3's failure
// semantics).
func (d *Driver) AddToken(s *scheduler.ParserState, spelling string, start, end int) {
	s.NoteToken()

	casePos, caseNeg := rules.DiscoverCaseProperties(spelling)

	matched := d.fireLeafRules(s, d.m.PrimaryLeafRules, spelling, start, end, casePos, caseNeg)
	if !matched {
		d.fireLeafRules(s, d.m.SecondaryLeafRules, spelling, start, end, casePos, caseNeg)
	}
}

func (d *Driver) fireLeafRules(
	s *scheduler.ParserState,
	leafRules []rules.LeafRule,
	spelling string,
	start, end int,
	casePos, caseNeg []string,
) bool {
	matched := false

	for _, lr := range leafRules {
		if !lr.Matches(spelling) {
			continue
		}

		matched = true

		cat := category.Promote(lr.Category(), casePos, caseNeg)
		cat = s.Properties().Extend(cat)

		res := s.Arena().Add(lr, 0, cat, start, end, nil, spelling)
		if res.Added() && res.Node != nil {
			s.Queue().Push(res.Node)
		}
	}

	return matched
}

// Parse implements spec §4.8: tokenize text via tok, add_token every
// token, drain the scheduler (process_necessary if fast, process_all
// otherwise), and snapshot the resulting roots into a forest.Parse.
func (d *Driver) Parse(tok Tokenizer, fast bool, deadline time.Time) *forest.Parse {
	s := scheduler.New(d.m, d.m.BranchRules)

	var tokens token.Sequence

	for {
		t, ok := tok.Next()
		if !ok {
			break
		}

		tokens = tokens.Append(t)
		d.AddToken(s, t.Spelling, tokens.Len()-1, tokens.Len())
	}

	d.log.Debug().Int("tokens", tokens.Len()).Bool("fast", fast).Msg("parsing: dispatching scheduler")

	if fast {
		s.ProcessNecessary(deadline)
	} else {
		s.ProcessAll(deadline)
	}

	roots := s.Roots()
	trees := make([]forest.ParseTree, len(roots))

	for i, root := range roots {
		trees[i] = forest.ParseTree{Root: root, Arena: s.Arena()}
	}

	timedOut := !deadline.IsZero() && !time.Now().Before(deadline) && s.HasPending()

	d.log.Debug().Int("roots", len(trees)).Bool("timed_out", timedOut).Msg("parsing: done")

	return &forest.Parse{
		Tokens:   tokens,
		Trees:    trees,
		Arena:    s.Arena(),
		TimedOut: timedOut,
	}
}
