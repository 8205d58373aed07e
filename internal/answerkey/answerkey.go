// Package answerkey loads, saves and resolves exam answer keys.
//
// A key is organized booklet type -> document type -> question number ->
// correct answer. Booklets are shuffled exam variants with their own keys;
// the document type picks the certification track's question set.
package answerkey

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tyilmaz/optikeval/internal/model"
)

// ErrEmptyKey is returned when a loaded key has no booklets at all.
var ErrEmptyKey = errors.New("answer key is empty")

var upperTR = cases.Upper(language.Turkish)

// Load reads an answer key from a JSON file of the form
// {"A": {"SRC1": {"1": "A", ...}}}.
func Load(path string) (model.AnswerKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answer key %s: %w", path, err)
	}
	var key model.AnswerKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parse answer key %s: %w", path, err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyKey)
	}
	return key, nil
}

// Save writes an answer key as indented JSON.
func Save(path string, key model.AnswerKey) error {
	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer key: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write answer key %s: %w", path, err)
	}
	return nil
}

// Booklet returns the per-document-type question maps for a booklet type.
func Booklet(key model.AnswerKey, booklet string) (map[string]map[int]string, bool) {
	bk, ok := key[booklet]
	return bk, ok
}

// Questions resolves a document type within one booklet's key. It tries the
// exact name first, then falls back to any key name that contains, or is
// contained in, the requested type; roster sheets and key sheets often
// abbreviate differently (e.g. "SRC1" vs "SRC 1 BELGESİ").
func Questions(booklet map[string]map[int]string, docType string) (map[int]string, bool) {
	if qs, ok := booklet[docType]; ok {
		return qs, true
	}
	// Scan names in sorted order so a multi-candidate fuzzy match resolves
	// the same way on every call.
	names := make([]string, 0, len(booklet))
	for name := range booklet {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(name, docType) || strings.Contains(docType, name) {
			return booklet[name], true
		}
	}
	return nil, false
}

// QuestionsExactOrGeneral resolves a booklet/document-type pair with no
// fuzzy matching: the exact document type, else the catch-all GENEL entry,
// else nil. This is the lookup the similarity analyzer uses to classify
// shared answers; it must never guess.
func QuestionsExactOrGeneral(key model.AnswerKey, booklet, docType string) map[int]string {
	bk, ok := key[booklet]
	if !ok {
		return nil
	}
	if qs, ok := bk[docType]; ok {
		return qs
	}
	return bk[model.GeneralDocType]
}

// NormalizeDocType upper-cases a document type with Turkish casing rules so
// dotted and dotless I collate the same way on both sides of a lookup.
func NormalizeDocType(docType string) string {
	return upperTR.String(strings.TrimSpace(docType))
}
