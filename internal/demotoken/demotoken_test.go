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

package demotoken

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ianlewis/pyramids/token"
)

func TestTokenizerSplitsWordsAndPunctuation(t *testing.T) {
	t.Parallel()

	tk := New(strings.NewReader("The cat sat, quietly."))

	var got []token.Token

	for {
		tok, ok := tk.Next()
		if !ok {
			break
		}

		got = append(got, tok)
	}

	want := []token.Token{
		{Spelling: "The", Start: 0, End: 3},
		{Spelling: "cat", Start: 4, End: 7},
		{Spelling: "sat", Start: 8, End: 11},
		{Spelling: ",", Start: 11, End: 12},
		{Spelling: "quietly", Start: 13, End: 20},
		{Spelling: ".", Start: 20, End: 21},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizerEmptyInput(t *testing.T) {
	t.Parallel()

	tk := New(strings.NewReader(""))

	if _, ok := tk.Next(); ok {
		t.Errorf("Next() on empty input should return ok=false")
	}
}
