package dedupe

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

// bucket holds the positions of the records sharing one key.
type bucket struct {
	values []model.Value
	idx    []int
}

// index buckets the eligible records by key. Buckets are ordered by first
// occurrence and positions inside a bucket follow the input order.
func index(records []model.Record, key []string, policy MissingPolicy) []*bucket {
	byKey := make(map[string]*bucket)
	var order []*bucket

	for i, r := range records {
		if !policy.eligible(r, key) {
			continue
		}
		k := r.KeyString(key)
		b, ok := byKey[k]
		if !ok {
			b = &bucket{values: r.Key(key)}
			byKey[k] = b
			order = append(order, b)
		}
		b.idx = append(b.idx, i)
	}

	return order
}

// duplicateSet returns the positions of every record sharing its key with
// at least one other record.
func duplicateSet(records []model.Record, key []string, policy MissingPolicy) map[int]bool {
	set := make(map[int]bool)
	for _, b := range index(records, key, policy) {
		if len(b.idx) < 2 {
			continue
		}
		for _, i := range b.idx {
			set[i] = true
		}
	}
	return set
}

// Find returns every occurrence of a duplicated key, in input order.
func Find(records []model.Record, key []string, policy MissingPolicy) []model.Record {
	set := duplicateSet(records, key, policy)
	out := make([]model.Record, 0, len(set))
	for i, r := range records {
		if set[i] {
			out = append(out, r)
		}
	}
	return out
}

// Groups returns the duplicate groups over key, ordered by first occurrence.
func Groups(records []model.Record, key []string, policy MissingPolicy) []model.DuplicateGroup {
	var groups []model.DuplicateGroup
	for _, b := range index(records, key, policy) {
		if len(b.idx) < 2 {
			continue
		}
		g := model.DuplicateGroup{
			Key:     append([]string(nil), key...),
			Values:  b.values,
			Records: make([]model.Record, 0, len(b.idx)),
		}
		for _, i := range b.idx {
			g.Records = append(g.Records, records[i])
		}
		groups = append(groups, g)
	}
	return groups
}

// PartialResult holds the weak-key matches of a partial duplicate search.
type PartialResult struct {
	// All is every record duplicated on the weak key.
	All []model.Record
	// Only is the part of All that is not also duplicated on the strong key.
	Only []model.Record
}

// Partial reports the records matching on weak, and among them the ones that
// do not match on strong.
func Partial(records []model.Record, weak, strong []string, policy MissingPolicy) PartialResult {
	weakSet := duplicateSet(records, weak, policy)
	strongSet := duplicateSet(records, strong, policy)

	var res PartialResult
	for i, r := range records {
		if !weakSet[i] {
			continue
		}
		res.All = append(res.All, r)
		if !strongSet[i] {
			res.Only = append(res.Only, r)
		}
	}
	return res
}

// CompareValues orders values: numbers first (numerically), then strings
// (lexically), then missing values.
func CompareValues(a, b model.Value) int {
	rank := func(v model.Value) int {
		switch v.Kind {
		case model.KindNumber:
			return 0
		case model.KindString:
			return 1
		default:
			return 2
		}
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch a.Kind {
	case model.KindNumber:
		return cmp.Compare(a.Num, b.Num)
	case model.KindString:
		return strings.Compare(a.Str, b.Str)
	default:
		return 0
	}
}

// SortByKey stable-sorts records by the key columns.
func SortByKey(records []model.Record, key []string) {
	slices.SortStableFunc(records, func(a, b model.Record) int {
		for _, c := range key {
			if d := CompareValues(a.Get(c), b.Get(c)); d != 0 {
				return d
			}
		}
		return 0
	})
}
