package main

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
}

// writeProjectTree builds a miniature but complete input layout: three legacy
// emoji plus a keycap that exercises the farm remap.
func writeProjectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "emoji-data")
	if err := os.MkdirAll(filepath.Join(root, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"emoji_map.json": `{"thumbs_up":"1f44d","thumbs_down":"1f44e","smile":"1f604","hash":"0023"}`,
		"unified_reactions.json": `{"thumbs_up":"1f44d","thumbs_down":"1f44e",` +
			`"smile":"1f604","hash":"0023"}`,
		"emoji.json": `[
			{"unified":"1F44D","short_name":"thumbs_up","category":"Smileys","sort_order":1,
			 "sheet_x":1,"sheet_y":0,"image":"1f44d.png","has_img_google":true,"has_img_twitter":true},
			{"unified":"1F44E","short_name":"thumbs_down","category":"Smileys","sort_order":2,
			 "sheet_x":2,"sheet_y":0,"image":"1f44e.png","has_img_google":true,"has_img_twitter":true},
			{"unified":"1F604","short_name":"smile","category":"Smileys","sort_order":3,
			 "sheet_x":3,"sheet_y":5,"image":"1f604.png","has_img_google":true,"has_img_twitter":true}
		]`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	for _, style := range emojiStyles {
		imgDir := filepath.Join(dataDir, "img-"+style+"-64")
		if err := os.MkdirAll(imgDir, 0755); err != nil {
			t.Fatal(err)
		}
		for _, cp := range []string{"1f44d", "1f44e", "1f604", "0023-20e3"} {
			writePNG(t, filepath.Join(imgDir, cp+".png"))
		}
		writePNG(t, filepath.Join(dataDir, "sheet-"+style+"-64.png"))
	}
	writePNG(t, filepath.Join(root, "assets", "brand.png"))
	return root
}

func TestMaterialize(t *testing.T) {
	root := writeProjectTree(t)
	cacheDir := filepath.Join(t.TempDir(), strings.Repeat("cd", 32))

	ds, err := loadDataset(root)
	if err != nil {
		t.Fatal(err)
	}
	tb, err := buildTables(ds)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"thumbs_up", "thumbs_down", "smile", "hash"}
	if !reflect.DeepEqual(tb.Names, want) {
		t.Fatalf("names = %v, want %v", tb.Names, want)
	}

	if err := materialize(root, cacheDir, ds, tb); err != nil {
		t.Fatal(err)
	}

	t.Run("image trees and sheets", func(t *testing.T) {
		for _, style := range emojiStyles {
			for _, name := range []string{"1f604.png", "brand.png"} {
				p := filepath.Join(cacheDir, "images-"+style+"-64", name)
				if _, err := os.Stat(p); err != nil {
					t.Errorf("missing %s: %v", p, err)
				}
			}
			if _, err := os.Stat(filepath.Join(cacheDir, "sheet-"+style+"-64.png")); err != nil {
				t.Errorf("missing sheet for %s: %v", style, err)
			}
		}
		f, err := os.Open(filepath.Join(cacheDir, "images-google-64", "brand.png"))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Width != emojiCellDim || cfg.Height != emojiCellDim {
			t.Errorf("brand icon is %dx%d, want %dx%d", cfg.Width, cfg.Height, emojiCellDim, emojiCellDim)
		}
	})

	t.Run("css", func(t *testing.T) {
		buf, err := os.ReadFile(filepath.Join(cacheDir, "emoji-google.css"))
		if err != nil {
			t.Fatal(err)
		}
		want := ".emoji-1f604 {\n    background-position: 6.25% 10.416666666666666%;\n}"
		if !strings.Contains(string(buf), want) {
			t.Errorf("css missing %q:\n%s", want, buf)
		}
	})

	t.Run("generated tables", func(t *testing.T) {
		buf, err := os.ReadFile(filepath.Join(cacheDir, "emoji_codes.js"))
		if err != nil {
			t.Fatal(err)
		}
		js := string(buf)
		for _, frag := range []string{
			"var emoji_codes = {",
			`names: ["thumbs_up","thumbs_down","smile","hash"]`,
			"if (typeof module !== 'undefined')",
			"module.exports = emoji_codes;",
		} {
			if !strings.Contains(js, frag) {
				t.Errorf("emoji_codes.js missing %q:\n%s", frag, js)
			}
		}

		var n2c map[string]string
		buf, err = os.ReadFile(filepath.Join(cacheDir, "name_to_codepoint.json"))
		if err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(buf, &n2c); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(n2c, tb.NameToCodepoint) {
			t.Errorf("name_to_codepoint.json = %v", n2c)
		}

		var c2n map[string]string
		buf, err = os.ReadFile(filepath.Join(cacheDir, "codepoint_to_name.json"))
		if err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(buf, &c2n); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(c2n, tb.CodepointToName) {
			t.Errorf("codepoint_to_name.json = %v", c2n)
		}
	})

	t.Run("legacy farm", func(t *testing.T) {
		link, err := os.Readlink(filepath.Join(cacheDir, "images", "emoji", "smile.png"))
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join("..", "..", "images-google-64", "1f604.png"); link != want {
			t.Errorf("smile.png -> %s, want %s", link, want)
		}

		// The keycap goes through the historical remap.
		link, err = os.Readlink(filepath.Join(cacheDir, "images", "emoji", "hash.png"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(link, "0023-20e3.png") {
			t.Errorf("hash.png -> %s, want remapped 0023-20e3.png", link)
		}
		// Links must resolve to real files.
		if _, err := os.Stat(filepath.Join(cacheDir, "images", "emoji", "hash.png")); err != nil {
			t.Errorf("hash.png dangling: %v", err)
		}
		if _, err := os.Stat(filepath.Join(cacheDir, "images", "emoji", "unicode", "1f604.png")); err != nil {
			t.Errorf("unicode/1f604.png dangling: %v", err)
		}
	})
}

func TestPipelineEndToEnd(t *testing.T) {
	root := writeProjectTree(t)
	cacheRoot := t.TempDir()

	fp, err := sourceFingerprint(root)
	if err != nil {
		t.Fatal(err)
	}
	cacheDir := filepath.Join(cacheRoot, fp)
	if isCached(cacheDir) {
		t.Fatal("fresh fingerprint reported as cached")
	}

	ds, err := loadDataset(root)
	if err != nil {
		t.Fatal(err)
	}
	tb, err := buildTables(ds)
	if err != nil {
		t.Fatal(err)
	}
	if err := materialize(root, cacheDir, ds, tb); err != nil {
		t.Fatal(err)
	}
	if isCached(cacheDir) {
		t.Fatal("cache trusted before the stamp was written")
	}
	if err := writeStamp(cacheDir); err != nil {
		t.Fatal(err)
	}
	if !isCached(cacheDir) {
		t.Fatal("stamped cache not reported as cached")
	}

	// Unchanged inputs hit the reuse path.
	again, err := sourceFingerprint(root)
	if err != nil {
		t.Fatal(err)
	}
	if again != fp {
		t.Fatalf("fingerprint drifted: %s vs %s", again, fp)
	}

	target := filepath.Join(root, "static", "generated", "emoji")
	if err := publish(target, cacheDir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(target, "emoji_codes.js")); err != nil {
		t.Fatalf("published tree unreadable through symlink: %v", err)
	}
}
