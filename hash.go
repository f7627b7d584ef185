package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// generatorVersion is folded into the fingerprint in place of hashing the
// generator's own sources (a compiled binary can't). Bump it whenever a change
// here affects the generated output.
const generatorVersion = "1"

// fingerprintFiles are the inputs whose bytes determine the generated output.
var fingerprintFiles = []string{
	"emoji-data/emoji_map.json",
	"emoji-data/emoji.json",
	"emoji-data/unified_reactions.json",
}

// sourceFingerprint hashes the contributing input files under root into a hex
// digest. Same bytes in, same digest out; any missing file is an error since
// generation cannot proceed without it.
func sourceFingerprint(root string) (string, error) {
	h := sha256.New()
	io.WriteString(h, "v"+generatorVersion+"\n")
	for _, rel := range fingerprintFiles {
		buf, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", fmt.Errorf("fingerprint input %s: %w", rel, err)
		}
		fmt.Fprintf(h, "%s %d\n", rel, len(buf))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
