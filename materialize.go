package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/nfnt/resize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

//go:embed static/*.tmpl
var staticTemplates embed.FS

var outputTemplates = template.Must(template.New("out").ParseFS(staticTemplates, "static/*.tmpl"))

const emojiCellDim = 64

// materialize writes the complete cache directory for one fingerprint:
// per-style image trees and sheets, CSS, the generated lookup tables and the
// legacy farm. The caller stamps the directory afterwards.
func materialize(root, cacheDir string, ds *dataset, tb *emojiTables) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	brand, err := loadBrandIcon(filepath.Join(root, "assets", "brand.png"))
	if err != nil {
		return fmt.Errorf("brand icon: %w", err)
	}

	rules := buildCSSRules(ds.records)
	for _, style := range emojiStyles {
		if err := materializeStyle(root, cacheDir, style, brand, rules); err != nil {
			return fmt.Errorf("style %s: %w", style, err)
		}
	}

	if err := writeTables(cacheDir, tb); err != nil {
		return err
	}
	return buildFarm(cacheDir, tb)
}

func materializeStyle(root, cacheDir, style string, brand []byte, rules []cssRule) error {
	srcDir := filepath.Join(root, "emoji-data", "img-"+style+"-64")
	dstDir := filepath.Join(cacheDir, "images-"+style+"-64")
	if err := copyImageTree(srcDir, dstDir); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dstDir, "brand.png"), brand, 0644); err != nil {
		return err
	}

	sheet := "sheet-" + style + "-64.png"
	if err := copyFile(filepath.Join(root, "emoji-data", sheet), filepath.Join(cacheDir, sheet)); err != nil {
		return err
	}
	return writeStyleCSS(filepath.Join(cacheDir, "emoji-"+style+".css"), style, rules)
}

func copyImageTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	bar := copyBar(len(entries), filepath.Base(dst))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
		bar.Add(1)
	}
	return bar.Finish()
}

func copyBar(n int, label string) *progressbar.ProgressBar {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return progressbar.Default(int64(n), label)
	}
	return progressbar.DefaultSilent(int64(n), label)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// loadBrandIcon scales the branding image down to one emoji cell so it can sit
// in every style's tree next to the real emoji.
func loadBrandIcon(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	out := resize.Resize(emojiCellDim, emojiCellDim, img, resize.Bicubic)
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeTables emits the script-embeddable table file plus the two standalone
// JSON maps.
func writeTables(cacheDir string, tb *emojiTables) error {
	names, err := json.Marshal(tb.Names)
	if err != nil {
		return err
	}
	n2c, err := json.Marshal(tb.NameToCodepoint)
	if err != nil {
		return err
	}
	c2n, err := json.Marshal(tb.CodepointToName)
	if err != nil {
		return err
	}
	catalog, err := json.Marshal(tb.Catalog)
	if err != nil {
		return err
	}

	buf := bytes.Buffer{}
	err = outputTemplates.ExecuteTemplate(&buf, "emoji_codes.js.tmpl", map[string]string{
		"Names":           string(names),
		"NameToCodepoint": string(n2c),
		"CodepointToName": string(c2n),
		"Catalog":         string(catalog),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "emoji_codes.js"), buf.Bytes(), 0644); err != nil {
		return err
	}

	if err := writeJSONFile(filepath.Join(cacheDir, "name_to_codepoint.json"), tb.NameToCodepoint); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(cacheDir, "codepoint_to_name.json"), tb.CodepointToName)
}

func writeJSONFile(path string, v any) error {
	buf, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0644)
}

// buildFarm lays out the secondary tree the legacy clients still load:
// name-keyed links plus codepoint-keyed links under unicode/, both pointing
// into the default style's images with the historical remap applied. Several
// names can share a codepoint, so the unicode links are deduped up front
// rather than created blindly and errors swallowed.
func buildFarm(cacheDir string, tb *emojiTables) error {
	farmDir := filepath.Join(cacheDir, "images", "emoji")
	unicodeDir := filepath.Join(farmDir, "unicode")
	if err := os.MkdirAll(unicodeDir, 0755); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, name := range tb.Names {
		cp := tb.NameToCodepoint[name]
		target := filepath.Join("..", "..", "images-"+defaultStyle+"-64", remapFarmCodepoint(cp)+".png")
		if err := os.Symlink(target, filepath.Join(farmDir, name+".png")); err != nil {
			return err
		}
		if seen[cp] {
			continue
		}
		seen[cp] = true
		if err := os.Symlink(filepath.Join("..", target), filepath.Join(unicodeDir, cp+".png")); err != nil {
			return err
		}
	}
	return nil
}
