package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var emojiStyles = []string{"google", "twitter"}

const defaultStyle = "google"

// emojiRecord is one entry of the extended dataset. Codepoints arrive as
// uppercase hex joined by '-' and are lowercased on load to match the rest of
// the pipeline.
type emojiRecord struct {
	Unified       string   `json:"unified"`
	ShortName     string   `json:"short_name"`
	ShortNames    []string `json:"short_names"`
	Category      string   `json:"category"`
	SortOrder     int      `json:"sort_order"`
	SheetX        int      `json:"sheet_x"`
	SheetY        int      `json:"sheet_y"`
	Image         string   `json:"image"`
	HasImgGoogle  bool     `json:"has_img_google"`
	HasImgTwitter bool     `json:"has_img_twitter"`
}

func (r *emojiRecord) hasImage(style string) bool {
	switch style {
	case "google":
		return r.HasImgGoogle
	case "twitter":
		return r.HasImgTwitter
	}
	return false
}

func (r *emojiRecord) hasAnyImage() bool {
	for _, s := range emojiStyles {
		if r.hasImage(s) {
			return true
		}
	}
	return false
}

// legacyEmoji is one entry of the old name->codepoint map. The map is kept as
// a slice because the file's key order drives picker ordering.
type legacyEmoji struct {
	Name      string
	Codepoint string
}

type dataset struct {
	legacy  []legacyEmoji
	records []emojiRecord
	unified map[string]string // authoritative name -> codepoint
}

func loadDataset(root string) (*dataset, error) {
	ds := &dataset{}
	var err error

	ds.legacy, err = loadLegacyMap(filepath.Join(root, "emoji-data", "emoji_map.json"))
	if err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(filepath.Join(root, "emoji-data", "emoji.json"))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf, &ds.records); err != nil {
		return nil, fmt.Errorf("parse emoji.json: %w", err)
	}
	for i := range ds.records {
		ds.records[i].Unified = strings.ToLower(ds.records[i].Unified)
	}

	buf, err = os.ReadFile(filepath.Join(root, "emoji-data", "unified_reactions.json"))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf, &ds.unified); err != nil {
		return nil, fmt.Errorf("parse unified_reactions.json: %w", err)
	}
	return ds, nil
}

// loadLegacyMap parses a flat {"name": "codepoint"} object while preserving
// the file's key order, which json.Unmarshal into a map would throw away.
func loadLegacyMap(path string) ([]legacyEmoji, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if d, _ := tok.(json.Delim); d != '{' {
		return nil, fmt.Errorf("parse %s: expected object, got %v", filepath.Base(path), tok)
	}

	var out []legacyEmoji
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		name := tok.(string)
		var cp string
		if err := dec.Decode(&cp); err != nil {
			return nil, fmt.Errorf("parse %s: value of %q: %w", filepath.Base(path), name, err)
		}
		out = append(out, legacyEmoji{Name: name, Codepoint: strings.ToLower(cp)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}
