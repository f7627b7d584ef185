package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	var root string
	var prune bool
	flag.StringVar(&root, "root", ".", "project root containing emoji-data/ and assets/")
	flag.BoolVar(&prune, "prune", false, "remove cache directories left over from older inputs")
	flag.Parse()

	lf := &logFormatter{io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   "logs/emoji-cache.log",
		MaxSize:    20,
		MaxBackups: 10,
		MaxAge:     7,
		Compress:   true,
	})}
	logrus.SetFormatter(lf)
	logrus.SetOutput(lf.out)
	logrus.SetReportCaller(true)

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	fp, err := sourceFingerprint(root)
	if err != nil {
		logrus.Fatalf("fingerprint inputs: %v", err)
	}
	logrus.Infof("input fingerprint %s", fp)

	cacheRoot := cfg.cacheRoot()
	if err := os.MkdirAll(cacheRoot, 0755); err != nil {
		logrus.Fatalf("create cache root: %v", err)
	}
	cacheDir := filepath.Join(cacheRoot, fp)

	manifest, err := openManifest(cacheRoot)
	if err != nil {
		logrus.Fatalf("open manifest: %v", err)
	}
	defer manifest.Close()

	if isCached(cacheDir) {
		logrus.Infof("cache %s already stamped, reusing", cacheDir)
	} else {
		ds, err := loadDataset(root)
		if err != nil {
			logrus.Fatalf("load dataset: %v", err)
		}
		tb, err := buildTables(ds)
		if err != nil {
			logrus.Fatalf("build tables: %v", err)
		}
		logrus.Infof("%d picker names, %d dataset records", len(tb.Names), len(ds.records))

		if err := materialize(root, cacheDir, ds, tb); err != nil {
			logrus.Fatalf("materialize %s: %v", cacheDir, err)
		}
		// The stamp is the trust signal: it must be the last write.
		if err := writeStamp(cacheDir); err != nil {
			logrus.Fatalf("write stamp: %v", err)
		}
		if err := recordBuild(manifest, fp, tb); err != nil {
			logrus.Fatalf("record build: %v", err)
		}
		logrus.Infof("generated cache %s", cacheDir)
	}

	target := filepath.Join(root, "static", "generated", "emoji")
	if err := publish(target, cacheDir); err != nil {
		logrus.Fatalf("publish %s: %v", target, err)
	}
	logrus.Infof("published %s -> %s", target, cacheDir)

	if prune {
		n, err := pruneCaches(manifest, cacheRoot, fp)
		if err != nil {
			logrus.Fatalf("prune caches: %v", err)
		}
		logrus.Infof("pruned %d stale cache directories", n)
	}
}

type logFormatter struct {
	out io.Writer
}

func (f *logFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buf := bytes.Buffer{}
	if entry.Level <= logrus.ErrorLevel {
		buf.WriteString("ERR")
	} else {
		buf.WriteString("INFO")
	}
	buf.WriteString("\t")
	buf.WriteString(entry.Time.UTC().Format("2006-01-02T15:04:05.000\t"))
	if entry.Caller == nil {
		buf.WriteString("internal")
	} else {
		buf.WriteString(filepath.Base(entry.Caller.File))
		buf.WriteString(":")
		buf.WriteString(strconv.Itoa(entry.Caller.Line))
	}
	buf.WriteString("\t")
	buf.WriteString(entry.Message)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
