// Package progress provides progress reporting for tile runs.
//
// The reporter tracks fetched, joined, failed and in-flight tile counts with
// atomic counters and prints a single updating line to stderr.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalTiles: grid.Area(),
//	    Workers:    16,
//	    Source:     baseURL,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
// # Output Format
//
//	[dezoomify] Downloading: http://example.com/images/img01
//	[dezoomify] Tiles: 176 | Workers: 16
//	[dezoomify] Progress: 45.5% | 80 fetched | 62 joined | 0 failed | 16 in-flight | 80 pending
package progress
