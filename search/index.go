// Package search provides a small in-memory full-text index for skills.
//
// Documents have three searchable fields: name, description and tags. A query
// is tokenized and every query term is matched against the indexed terms as an
// exact match, a prefix match or a fuzzy match within a bounded edit distance.
// Any match in any field qualifies a document. Scores favor the name field and
// favor exact and prefix matches over fuzzy ones.
package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Match factors. Exact beats any prefix, and any prefix beats any fuzzy match.
const (
	exactFactor    = 1.0
	prefixBase     = 0.5
	fuzzyNumerator = 0.4
)

type field uint8

const (
	fieldName field = iota
	fieldDescription
	fieldTags
	numFields
)

// Options configures matching and scoring.
type Options struct {
	// NameBoost multiplies the score of matches in the name field. Other
	// fields have weight 1.
	NameBoost float64

	// Fuzzy is the edit distance allowed per query term as a fraction of the
	// term length, rounded to the nearest integer. Zero disables fuzzy
	// matching.
	Fuzzy float64

	// Prefix enables matching indexed terms that start with a query term.
	Prefix bool
}

// DefaultOptions returns name boost 2, fuzzy 0.2 and prefix matching on.
func DefaultOptions() Options {
	return Options{NameBoost: 2, Fuzzy: 0.2, Prefix: true}
}

// Document is a unit of indexing. ID must be unique within an index.
type Document struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// Hit is a matching document.
type Hit struct {
	ID    string
	Name  string
	Score float64
	// Terms lists the indexed terms that matched, sorted.
	Terms []string
}

// Index is an inverted index over Documents. Add must not run concurrently
// with any other method; once populated, Search may be called from many
// goroutines.
type Index struct {
	opts     Options
	docs     []Document
	postings map[string]map[int]uint8 // term -> doc ordinal -> field bitmask

	mu    sync.Mutex
	terms []string // sorted keys of postings
	dirty bool
}

// New returns an empty index.
func New(opts Options) *Index {
	return &Index{
		opts:     opts,
		postings: make(map[string]map[int]uint8),
	}
}

// Add indexes doc.
func (ix *Index) Add(doc Document) {
	ord := len(ix.docs)
	ix.docs = append(ix.docs, doc)

	ix.addField(ord, fieldName, uniqueTokens(doc.Name))
	ix.addField(ord, fieldDescription, uniqueTokens(doc.Description))
	ix.addField(ord, fieldTags, uniqueTokens(doc.Tags...))
}

// AddAll indexes every doc in order.
func (ix *Index) AddAll(docs []Document) {
	for _, doc := range docs {
		ix.Add(doc)
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

func (ix *Index) addField(ord int, f field, tokens []string) {
	for _, tok := range tokens {
		docs, ok := ix.postings[tok]
		if !ok {
			docs = make(map[int]uint8)
			ix.postings[tok] = docs
			ix.mu.Lock()
			ix.dirty = true
			ix.mu.Unlock()
		}
		docs[ord] |= 1 << f
	}
}

func (ix *Index) sortedTerms() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.dirty || ix.terms == nil {
		ix.terms = make([]string, 0, len(ix.postings))
		for term := range ix.postings {
			ix.terms = append(ix.terms, term)
		}
		sort.Strings(ix.terms)
		ix.dirty = false
	}
	return ix.terms
}

// Search returns the documents matching any term of query, best first. Ties
// keep insertion order. A query without tokens has no hits.
func (ix *Index) Search(query string) []Hit {
	queryTerms := uniqueTokens(query)
	if len(queryTerms) == 0 || len(ix.docs) == 0 {
		return nil
	}
	terms := ix.sortedTerms()

	scores := make(map[int]float64)
	matched := make(map[int][]string)

	for _, q := range queryTerms {
		var best [numFields]map[int]float64
		for f := range best {
			best[f] = make(map[int]float64)
		}

		for term, factor := range ix.expand(q, terms) {
			for ord, mask := range ix.postings[term] {
				for f := field(0); f < numFields; f++ {
					if mask&(1<<f) == 0 {
						continue
					}
					s := ix.weight(f) * factor
					if s > best[f][ord] {
						best[f][ord] = s
					}
				}
				if !containsString(matched[ord], term) {
					matched[ord] = append(matched[ord], term)
				}
			}
		}

		for f := range best {
			for ord, s := range best[f] {
				scores[ord] += s
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	ords := make([]int, 0, len(scores))
	for ord := range scores {
		ords = append(ords, ord)
	}
	sort.Slice(ords, func(i, j int) bool {
		si, sj := scores[ords[i]], scores[ords[j]]
		if si != sj {
			return si > sj
		}
		return ords[i] < ords[j]
	})
	for _, ord := range ords {
		matchedTerms := matched[ord]
		sort.Strings(matchedTerms)
		hits = append(hits, Hit{
			ID:    ix.docs[ord].ID,
			Name:  ix.docs[ord].Name,
			Score: scores[ord],
			Terms: matchedTerms,
		})
	}
	return hits
}

// expand returns every indexed term matching q with its match factor.
func (ix *Index) expand(q string, terms []string) map[string]float64 {
	out := make(map[string]float64)
	qLen := utf8.RuneCountInString(q)

	if _, ok := ix.postings[q]; ok {
		out[q] = exactFactor
	}

	if ix.opts.Prefix {
		start := sort.SearchStrings(terms, q)
		for _, term := range terms[start:] {
			if !strings.HasPrefix(term, q) {
				break
			}
			if term == q {
				continue
			}
			tLen := utf8.RuneCountInString(term)
			out[term] = prefixBase + prefixBase*float64(qLen)/float64(tLen)
		}
	}

	maxEdits := int(math.Round(ix.opts.Fuzzy * float64(qLen)))
	if maxEdits > 0 {
		for _, term := range terms {
			if _, ok := out[term]; ok {
				continue
			}
			if abs(utf8.RuneCountInString(term)-qLen) > maxEdits {
				continue
			}
			if d := editDistance(q, term); d >= 1 && d <= maxEdits {
				out[term] = fuzzyNumerator / float64(1+d)
			}
		}
	}
	return out
}

func (ix *Index) weight(f field) float64 {
	if f == fieldName && ix.opts.NameBoost > 0 {
		return ix.opts.NameBoost
	}
	return 1
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
