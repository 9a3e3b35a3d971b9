package render

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/surgebase/porter2"

	"github.com/projectd/projectd/internal/docmodel"
)

// IndexFileName is the search index file written to the project root.
const IndexFileName = "search_index.json"

// minTermLength drops words too short to be useful search terms.
const minTermLength = 3

// IndexEntry is one searchable entity. Terms hold the stemmed words of the
// entity's name, brief, and description, deduplicated and sorted.
type IndexEntry struct {
	Ref   string   `json:"ref"`
	Kind  string   `json:"kind"`
	Name  string   `json:"name"`
	Brief string   `json:"brief,omitempty"`
	Terms []string `json:"terms"`
}

// Index is the full-text search index over the documented entities.
type Index struct {
	Entries []IndexEntry `json:"entries"`
}

// BuildIndex flattens the graph into searchable entries. The index is built
// from the raw graph rather than a rendered copy, so terms come from the
// original comment text and never contain markup.
func BuildIndex(data *docmodel.ParsedData) *Index {
	idx := &Index{}
	for _, ns := range sortedValues(data.Namespaces) {
		if ns.Name != "" {
			idx.add("namespace", ns.Name, ns.Name, &ns.EntityDoc)
		}
		for _, enum := range sortedValues(ns.Enums) {
			idx.add("enum", qualify(ns.Name, enum.Name), enum.Name, &enum.EntityDoc)
			for _, value := range enum.Values {
				idx.add("enumerator", qualify(ns.Name, enum.Name)+"::"+value.Name, value.Name, &value.EntityDoc)
			}
		}
		for _, class := range sortedValues(ns.Classes) {
			ref := qualify(ns.Name, class.Name)
			idx.add("class", ref, class.Name, &class.EntityDoc)
			for _, method := range class.PublicMethods {
				idx.add("method", ref+"::"+method.Name, method.Name, &method.EntityDoc)
			}
			for _, attr := range class.PublicAttributes {
				idx.add("attribute", ref+"::"+attr.Name, attr.Name, &attr.EntityDoc)
			}
			for _, enum := range sortedValues(class.PublicEnums) {
				idx.add("enum", ref+"::"+enum.Name, enum.Name, &enum.EntityDoc)
			}
		}
	}
	return idx
}

// WriteIndex writes the index as indented JSON.
func WriteIndex(path string, idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write search index: %w", err)
	}
	return nil
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "::" + name
}

func (idx *Index) add(kind, ref, name string, entity *docmodel.EntityDoc) {
	idx.Entries = append(idx.Entries, IndexEntry{
		Ref:   ref,
		Kind:  kind,
		Name:  name,
		Brief: plainText(entity.Brief),
		Terms: indexTerms(name, entity),
	})
}

// indexTerms tokenizes the entity's name, brief, and description into
// lowercase stemmed terms. Code and verbatim samples are skipped.
func indexTerms(name string, entity *docmodel.EntityDoc) []string {
	seen := make(map[string]bool)

	collect := func(text string) {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, word := range words {
			if len(word) < minTermLength {
				continue
			}
			seen[porter2.Stem(word)] = true
		}
	}
	collectBlock := func(block *docmodel.DocBlock) {
		if block == nil {
			return
		}
		for _, element := range block.Elements {
			if element.Kind == docmodel.ElementText {
				collect(element.Text)
			}
		}
	}

	collect(name)
	collectBlock(entity.Brief)
	collectBlock(entity.Desc)

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
