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

package scoring

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Scored is anything that owns a scoring Table and can name itself. Rule
// variants implement this (rules.Rule embeds it); the store only needs
// the name (for the scoring record's repr(rule_str) field) and the
// table to populate.
type Scored interface {
	String() string
	Table() *Table
}

// Store loads and saves scoring tables in the tab-separated format of
// spec.md §6: one record per line,
//
//	repr(rule_str) TAB repr(feature_key) TAB repr(score) TAB repr(accuracy) TAB repr(count)
//
// repr fields are escaped so that the result never contains a literal
// tab or newline and is unambiguous to split back out — this is a
// bespoke format private to this module (spec §1's "persistence format
// stability... is private to this system"), not a generic CSV/YAML
// document, so it is implemented directly rather than through a
// document-format library (see DESIGN.md).
type Store struct {
	Log zerolog.Logger
}

// reprEscape makes s safe to place inside a single TSV field: backslash
// -escapes backslashes, tabs, and newlines. reprUnescape is its inverse.
func reprEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`)

	return r.Replace(s)
}

func reprUnescape(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}

		i++

		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}

	return b.String()
}

// Save writes one record per feature key of every rule's table to w.
func (s Store) Save(w io.Writer, rules []Scored) error {
	bw := bufio.NewWriter(w)

	for _, r := range rules {
		name := r.String()

		for ks, k := range r.Table().shadow {
			e := r.Table().entries[ks]

			_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\n",
				reprEscape(name),
				reprEscape(k.String()),
				strconv.FormatFloat(e.Score, 'g', -1, 64),
				strconv.FormatFloat(e.Weight, 'g', -1, 64),
				strconv.Itoa(e.Count),
			)
			if err != nil {
				return fmt.Errorf("scoring: writing record: %w", err)
			}
		}
	}

	return bw.Flush()
}

// Load reads records from r and installs them into the matching rule's
// table, keyed by rule_str. A rule present in rules whose string form
// does not appear in r retains its default table. A record whose
// rule_str does not match any rule in rules is skipped (spec §6: "Unknown
// rules are silently skipped on load"); this is logged at debug, since
// it is the routine case when a model has grown new rules since the
// store was written. A malformed row (wrong field count, unparsable
// number) is logged at warn and skipped, since it indicates store
// corruption rather than routine drift.
func (s Store) Load(r io.Reader, rules []Scored) error {
	byName := make(map[string]*Table, len(rules))
	for _, rl := range rules {
		byName[rl.String()] = rl.Table()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0

	for sc.Scan() {
		line++

		text := sc.Text()
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 5 {
			s.Log.Warn().Int("line", line).Int("fields", len(fields)).Msg("scoring: malformed row, skipping")
			continue
		}

		ruleName := reprUnescape(fields[0])

		table, ok := byName[ruleName]
		if !ok {
			s.Log.Debug().Str("rule", ruleName).Msg("scoring: unknown rule, skipping")
			continue
		}

		score, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			s.Log.Warn().Int("line", line).Err(err).Msg("scoring: unparsable score, skipping")
			continue
		}

		weight, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			s.Log.Warn().Int("line", line).Err(err).Msg("scoring: unparsable weight, skipping")
			continue
		}

		count, err := strconv.Atoi(fields[4])
		if err != nil {
			s.Log.Warn().Int("line", line).Err(err).Msg("scoring: unparsable count, skipping")
			continue
		}

		key := parseFeatureKey(reprUnescape(fields[1]))
		table.Set(key, Entry{Score: score, Weight: weight, Count: count})
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("scoring: reading store: %w", err)
	}

	return nil
}

// parseFeatureKey inverts FeatureKey.String(). "default" has no
// parenthesized parts; everything else is "kind(part,part,...)".
func parseFeatureKey(s string) FeatureKey {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return FeatureKey{Kind: s}
	}

	kind := s[:open]
	inner := s[open+1 : len(s)-1]

	if inner == "" {
		return FeatureKey{Kind: kind}
	}

	return FeatureKey{Kind: kind, Parts: strings.Split(inner, ",")}
}
