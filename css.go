package main

import (
	"bytes"
	"os"
	"sort"
	"strconv"
)

// The spritesheets are a fixed 49x49 grid; CSS percentage positioning divides
// by cells-1. Changing either side of this breaks alignment against the
// shipped sheets.
const sheetCells = 49

// spritePercent formats coord*100/48 with the shortest decimal that
// round-trips, e.g. 3 -> "6.25", 5 -> "10.416666666666666".
func spritePercent(coord int) string {
	return strconv.FormatFloat(float64(coord*100)/float64(sheetCells-1), 'f', -1, 64)
}

type cssRule struct {
	Codepoint string
	X, Y      string
}

// buildCSSRules emits one rule per emoji renderable in the default style,
// ordered by sort_order. The same rule set is written for every style; only
// the sheet reference differs.
func buildCSSRules(records []emojiRecord) []cssRule {
	recs := make([]*emojiRecord, 0, len(records))
	for i := range records {
		if records[i].hasImage(defaultStyle) {
			recs = append(recs, &records[i])
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].SortOrder != recs[j].SortOrder {
			return recs[i].SortOrder < recs[j].SortOrder
		}
		return recs[i].Unified < recs[j].Unified
	})

	rules := make([]cssRule, 0, len(recs))
	for _, r := range recs {
		rules = append(rules, cssRule{
			Codepoint: r.Unified,
			X:         spritePercent(r.SheetX),
			Y:         spritePercent(r.SheetY),
		})
	}
	return rules
}

func writeStyleCSS(path, style string, rules []cssRule) error {
	buf := bytes.Buffer{}
	err := outputTemplates.ExecuteTemplate(&buf, "emoji.css.tmpl", map[string]any{
		"Style": style,
		"Rules": rules,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
