package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/freundm/dezoomify/internal/config"
	"github.com/freundm/dezoomify/internal/untiler"
)

// batchEntry is one image of a batch list: a source URL and the output path
// it resolves to.
type batchEntry struct {
	url    string
	output string
}

// parseBatch reads a list of images, one per line: a URL optionally followed
// by an output filename. Blank lines are skipped. Unnamed entries are
// numbered from the primary output (img.jpg -> img001.jpg, img002.jpg, ...);
// named entries land in the primary output's directory and gain a .jpg
// extension when they have none.
func parseBatch(r *bufio.Scanner, primaryOutput string) ([]batchEntry, error) {
	dir := filepath.Dir(primaryOutput)
	ext := filepath.Ext(primaryOutput)
	root := strings.TrimSuffix(primaryOutput, ext)
	if ext == "" {
		ext = ".jpg"
	}

	var entries []batchEntry
	n := 0
	for r.Scan() {
		fields := strings.Fields(r.Text())
		if len(fields) == 0 {
			continue
		}
		n++

		entry := batchEntry{url: fields[0]}
		if len(fields) > 1 {
			name := fields[1]
			if filepath.Ext(name) == "" {
				name += ".jpg"
			}
			entry.output = filepath.Join(dir, name)
		} else {
			entry.output = fmt.Sprintf("%s%03d%s", root, n, ext)
		}
		entries = append(entries, entry)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	return entries, nil
}

// runBatch processes a list file entry by entry. A failure aborts only the
// entry it occurred on; the exit code reflects the first failure.
func runBatch(ctx context.Context, runner *untiler.Runner, cfg config.Config, log *logrus.Logger) int {
	f, err := os.Open(cfg.URL)
	if err != nil {
		log.Errorf("open list file: %v", err)
		return ExitInvalidArgs
	}
	defer f.Close()

	entries, err := parseBatch(bufio.NewScanner(f), cfg.Output)
	if err != nil {
		log.Errorf("%v", err)
		return ExitInvalidArgs
	}
	if len(entries) == 0 {
		log.Warnf("list file %s contains no entries", cfg.URL)
		return ExitSuccess
	}

	code := ExitSuccess
	for i, entry := range entries {
		if ctx.Err() != nil {
			return ExitGeneralError
		}
		log.Infof("image %d of %d: %s", i+1, len(entries), entry.url)

		if c := runSingle(ctx, runner, cfg, entry.url, entry.output, log); c != ExitSuccess {
			log.Warnf("skipping %s", entry.url)
			if code == ExitSuccess {
				code = c
			}
		}
	}
	return code
}
