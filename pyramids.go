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

// Package pyramids wires together the category, rule, chart, scheduler,
// parsing, disambiguation, generation, and graph-extraction packages into
// a single rule-based chart parser and generator (spec.md's OVERVIEW),
// the way lexparse.go's LexParse wired a Lexer and a Parser together into
// one entrypoint.
package pyramids

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ianlewis/pyramids/disambiguate"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/generation"
	"github.com/ianlewis/pyramids/graph"
	"github.com/ianlewis/pyramids/model"
	"github.com/ianlewis/pyramids/parsing"
	"github.com/rs/zerolog"
)

// Parser runs one or more parses against a fixed, immutable Model (spec
// §6: "safe to share across concurrently running parses"). Construct one
// with New and reuse it for every text parsed against that grammar.
type Parser struct {
	model  *model.Model
	driver *parsing.Driver
}

// Option configures a Parser built by New.
type Option func(*options)

type options struct {
	log zerolog.Logger
}

// WithLogger directs a Parser's per-parse diagnostics to log. The zero
// Logger (the default) discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New builds a Parser over m.
func New(m *model.Model, opts ...Option) *Parser {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return &Parser{model: m, driver: parsing.New(m, o.log)}
}

// ParseOptions controls a single Parse call: Fast selects spec §4.8's
// process_necessary early-exit over exhaustive process_all, and Deadline
// bounds wall-clock time. The zero value runs exhaustively with no
// deadline.
type ParseOptions struct {
	Fast     bool
	Deadline time.Time
}

// Parse tokenizes and parses tok against p's Model (spec §4.3, §4.8). The
// effective deadline is the earlier of opts.Deadline and ctx's own
// deadline, if any. A ctx that is already canceled or past its deadline
// when Parse returns is reported via the returned error; the partial
// forest.Parse is still returned alongside it, mirroring LexParse's
// practice of returning the root it had built so far together with the
// error that interrupted it.
func (p *Parser) Parse(ctx context.Context, tok parsing.Tokenizer, opts ParseOptions) (*forest.Parse, error) {
	deadline := opts.Deadline
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	result := p.driver.Parse(tok, opts.Fast, deadline)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// Disambiguate picks one set of pairwise non-overlapping trees out of
// parse, greedily preferring higher-scoring trees (spec §4.10).
func (p *Parser) Disambiguate(parse forest.Parse) forest.Parse {
	return disambiguate.Disambiguate(parse)
}

// Enumerate exhaustively enumerates every disambiguation of parse at the
// best (gap size, piece count) level reachable before deadline (spec
// §4.10).
func (p *Parser) Enumerate(parse forest.Parse, deadline time.Time) ([]forest.Parse, bool) {
	return disambiguate.Enumerate(parse, deadline)
}

// Graphs extracts one semantic graph per tree in parse (spec §4.12).
// parse must already be pairwise non-overlapping: the result of
// Disambiguate, or one element of Enumerate's result.
func (p *Parser) Graphs(parse forest.Parse) []graph.ParseGraph {
	return graph.Extract(parse)
}

// Generate runs p's Model's rules in reverse against g, producing
// candidate surface trees that would extract back to (a graph
// isomorphic to) g (spec §4.11).
func (p *Parser) Generate(g graph.ParseGraph) []generation.Tree {
	return generation.Generate(p.model, g)
}

// Input is one text to parse in a ParseMany batch.
type Input struct {
	Tokenizer parsing.Tokenizer
	Options   ParseOptions
}

// ParseMany runs one parse per input concurrently against p's shared
// Model, in the same goroutine-per-task/sync.WaitGroup/context-
// cancellation shape lexparse.go's LexParse used to run a lexer and a
// parser concurrently over a single input -- generalized here to many
// independent parses sharing one immutable Model, since each parse opens
// its own scheduler.ParserState and Arena and never touches another
// parse's state (spec §5).
//
// results[i] holds the forest.Parse for inputs[i] regardless of whether
// any parse failed; a failure in one parse does not cancel the others.
// The returned error is the first non-context error across all parses,
// if any, else the first context error, mirroring LexParse's own
// priority between a lexer's and a parser's error.
func (p *Parser) ParseMany(ctx context.Context, inputs []Input) ([]*forest.Parse, error) {
	results := make([]*forest.Parse, len(inputs))
	errs := make([]error, len(inputs))

	var waitGrp sync.WaitGroup

	for i, in := range inputs {
		waitGrp.Add(1)

		go func(i int, in Input) {
			defer waitGrp.Done()

			result, err := p.Parse(ctx, in.Tokenizer, in.Options)
			results[i] = result
			errs[i] = err
		}(i, in)
	}

	waitGrp.Wait()

	return results, firstErr(errs)
}

func firstErr(errs []error) error {
	var fallback error

	for _, err := range errs {
		if err == nil {
			continue
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if fallback == nil {
				fallback = err
			}

			continue
		}

		return err
	}

	return fallback
}
