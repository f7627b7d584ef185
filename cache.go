package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/coyove/bbolt"
	"github.com/sirupsen/logrus"
)

const stampName = ".success-stamp"

// isCached reports whether the cache directory for a fingerprint was fully
// generated. Only the stamp counts; a directory without one may be the debris
// of an aborted run and is regenerated from scratch.
func isCached(cacheDir string) bool {
	_, err := os.Stat(filepath.Join(cacheDir, stampName))
	return err == nil
}

func writeStamp(cacheDir string) error {
	return os.WriteFile(filepath.Join(cacheDir, stampName),
		[]byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0644)
}

// publish points target at cacheDir, replacing whatever was there. Remove
// then symlink; there is no cross-run locking, the single-writer setup flow
// owns this path.
func publish(target, cacheDir string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	abs, err := filepath.Abs(cacheDir)
	if err != nil {
		return err
	}
	return os.Symlink(abs, target)
}

var manifestBucket = []byte("builds")

type buildRecord struct {
	BuiltAt        string `json:"built_at"`
	Names          int    `json:"names"`
	NewFromDataset int    `json:"new_from_dataset"`
}

// openManifest opens the bookkeeping store in the cache root. The manifest
// records what was built when; trust still comes from the stamp files.
func openManifest(cacheRoot string) (*bbolt.DB, error) {
	return bbolt.Open(filepath.Join(cacheRoot, "manifest.db"), 0644, &bbolt.Options{
		FreelistType: bbolt.FreelistMapType,
	})
}

func recordBuild(db *bbolt.DB, fingerprint string, tb *emojiTables) error {
	rec, err := json.Marshal(buildRecord{
		BuiltAt:        time.Now().UTC().Format(time.RFC3339),
		Names:          len(tb.Names),
		NewFromDataset: tb.NewFromDataset,
	})
	if err != nil {
		return err
	}
	return db.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists(manifestBucket)
		if err != nil {
			return err
		}
		return bk.Put([]byte(fingerprint), rec)
	})
}

// pruneCaches removes every fingerprint directory except keep, dropping the
// matching manifest entries. Returns the number of directories removed.
func pruneCaches(db *bbolt.DB, cacheRoot, keep string) (int, error) {
	entries, err := os.ReadDir(cacheRoot)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || e.Name() == keep || !isFingerprintName(e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(cacheRoot, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		logrus.Infof("pruned cache %s", e.Name())
		removed++
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(manifestBucket)
		if bk == nil {
			return nil
		}
		var stale [][]byte
		c := bk.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if string(k) != keep {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := bk.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

// isFingerprintName guards prune against touching manifest.db or anything
// else a human dropped into the cache root.
func isFingerprintName(name string) bool {
	if len(name) != 64 {
		return false
	}
	for _, c := range name {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
