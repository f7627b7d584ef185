package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type emojiTables struct {
	Names           []string
	NameToCodepoint map[string]string
	CodepointToName map[string]string
	Catalog         emojiCatalog
	NewFromDataset  int
}

type catalogCategory struct {
	Name       string
	Codepoints []string
}

// emojiCatalog keeps categories in display order; MarshalJSON emits them as an
// object in that order instead of the sorted-key order a map would get.
type emojiCatalog []catalogCategory

func (c emojiCatalog) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i, cat := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(cat.Codepoints)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func buildTables(ds *dataset) (*emojiTables, error) {
	names := emojiNamesForPicker(ds.legacy, ds.unified)
	applyThumbsOrder(names)

	n2c := make(map[string]string, len(names))
	c2n := make(map[string]string, len(names))
	for _, name := range names {
		cp, ok := ds.unified[name]
		if !ok {
			// Can't happen if the picker filter did its job; a miss here means
			// the inputs disagree with each other.
			return nil, fmt.Errorf("picker name %q has no unified reaction codepoint", name)
		}
		n2c[name] = cp
		if _, ok := c2n[cp]; !ok {
			c2n[cp] = name // first name in picker order wins
		}
	}

	tb := &emojiTables{
		Names:           names,
		NameToCodepoint: n2c,
		CodepointToName: c2n,
	}
	if err := mergeDatasetEmoji(tb, ds.records); err != nil {
		return nil, err
	}
	tb.Catalog = buildCatalog(ds.records)
	return tb, nil
}

// emojiNamesForPicker maps the codepoints of the legacy map to one canonical
// name each, in the order the codepoints first appear. When several legacy
// names share a codepoint, the first one known to the unified reactions table
// wins; codepoints with no such name are dropped entirely.
func emojiNamesForPicker(legacy []legacyEmoji, unified map[string]string) []string {
	var order []string
	byCodepoint := map[string][]string{}
	for _, e := range legacy {
		if _, ok := byCodepoint[e.Codepoint]; !ok {
			order = append(order, e.Codepoint)
		}
		byCodepoint[e.Codepoint] = append(byCodepoint[e.Codepoint], e.Name)
	}

	var names []string
	for _, cp := range order {
		for _, name := range byCodepoint[cp] {
			if _, ok := unified[name]; ok {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// applyThumbsOrder forces thumbs_up ahead of thumbs_down by swapping the two
// positions. Historical picker requirement; the rest of the list is untouched.
func applyThumbsOrder(names []string) {
	up, down := -1, -1
	for i, n := range names {
		switch n {
		case "thumbs_up":
			up = i
		case "thumbs_down":
			down = i
		}
	}
	if up >= 0 && down >= 0 && down < up {
		names[down], names[up] = names[up], names[down]
	}
}

// mergeDatasetEmoji extends the tables with dataset entries the legacy/unified
// tables don't cover yet. A name or codepoint collision surviving the
// inclusion filter is a data defect and aborts the run.
func mergeDatasetEmoji(tb *emojiTables, records []emojiRecord) error {
	recs := make([]*emojiRecord, 0, len(records))
	for i := range records {
		recs = append(recs, &records[i])
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].SortOrder != recs[j].SortOrder {
			return recs[i].SortOrder < recs[j].SortOrder
		}
		return recs[i].Unified < recs[j].Unified
	})

	for _, r := range recs {
		if !qualifiesAsNew(r, tb.CodepointToName) {
			continue
		}
		if cp, dup := tb.NameToCodepoint[r.ShortName]; dup {
			return fmt.Errorf("dataset emoji %q (%s) collides with existing name for %s",
				r.ShortName, r.Unified, cp)
		}
		tb.Names = append(tb.Names, r.ShortName)
		tb.NameToCodepoint[r.ShortName] = r.Unified
		tb.CodepointToName[r.Unified] = r.ShortName
		tb.NewFromDataset++
	}
	return nil
}

// qualifiesAsNew decides whether a dataset record earns its own table entry:
// it needs a short name, a renderable image in at least one style, must not be
// a skin-tone variant, and must not duplicate an already-mapped codepoint.
func qualifiesAsNew(r *emojiRecord, c2n map[string]string) bool {
	if r.ShortName == "" || !r.hasAnyImage() {
		return false
	}
	if hasSkinToneModifier(r.Unified) {
		return false
	}
	_, taken := c2n[r.Unified]
	return !taken
}

func hasSkinToneModifier(codepoint string) bool {
	for _, part := range strings.Split(codepoint, "-") {
		switch part {
		case "1f3fb", "1f3fc", "1f3fd", "1f3fe", "1f3ff":
			return true
		}
	}
	return false
}

// buildCatalog groups renderable dataset entries by category. Entries follow
// sort_order; categories follow the smallest sort_order of their entries.
func buildCatalog(records []emojiRecord) emojiCatalog {
	type entry struct {
		order     int
		codepoint string
	}
	byCategory := map[string][]entry{}
	minOrder := map[string]int{}
	for i := range records {
		r := &records[i]
		if r.Category == "" || !r.hasAnyImage() {
			continue
		}
		byCategory[r.Category] = append(byCategory[r.Category], entry{r.SortOrder, r.Unified})
		if cur, ok := minOrder[r.Category]; !ok || r.SortOrder < cur {
			minOrder[r.Category] = r.SortOrder
		}
	}

	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if minOrder[cats[i]] != minOrder[cats[j]] {
			return minOrder[cats[i]] < minOrder[cats[j]]
		}
		return cats[i] < cats[j]
	})

	catalog := make(emojiCatalog, 0, len(cats))
	for _, c := range cats {
		entries := byCategory[c]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].order != entries[j].order {
				return entries[i].order < entries[j].order
			}
			return entries[i].codepoint < entries[j].codepoint
		})
		cps := make([]string, 0, len(entries))
		for _, e := range entries {
			cps = append(cps, e.codepoint)
		}
		catalog = append(catalog, catalogCategory{Name: c, Codepoints: cps})
	}
	return catalog
}
