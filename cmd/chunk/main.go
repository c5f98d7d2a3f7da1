package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"rag-ingest/config"
	"rag-ingest/internal/core/chunking"
	coreingest "rag-ingest/internal/core/ingest"
	"rag-ingest/pkg/logger"
)

// chunk runs the chunking pipeline over a local PDF or text file and prints
// per-chunk stats. Useful for tuning target/overlap without a full ingest.
func main() {
	var (
		target      = flag.Int("target", config.Cfg.Chunking.TargetTokens, "target tokens per chunk")
		overlap     = flag.Int("overlap", config.Cfg.Chunking.OverlapTokens, "overlap tokens between chunks")
		workers     = flag.Int("workers", config.Cfg.Chunking.MaxWorkers, "max segmentation workers")
		forceLegacy = flag.Bool("legacy", false, "force the character-window tier")
		standard    = flag.Bool("standard", false, "skip the optimized tier")
		preview     = flag.Int("preview", 80, "preview runes per chunk (0 disables)")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()
	if *verbose {
		if err := logger.SetLevel("debug"); err != nil {
			logger.Fatal(err, "set log level")
		}
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: chunk [flags] <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	pages, err := coreingest.ExtractPages(flag.Arg(0))
	if err != nil {
		logger.Fatal(err, "extract failed")
	}

	pipeline := chunking.NewPipeline(config.Cfg.Chunking.Encoding, nil)
	cfg := chunking.Config{
		TargetTokens:     *target,
		OverlapTokens:    *overlap,
		MaxWorkers:       *workers,
		DisableOptimized: *standard,
		ForceLegacy:      *forceLegacy,
		StageTimeout:     2 * time.Minute,
	}

	start := time.Now()
	chunks, err := pipeline.ChunkPages(context.Background(), pages, cfg)
	if err != nil {
		logger.Fatal(err, "chunking failed")
	}

	fmt.Printf("%d pages -> %d chunks in %s\n", len(pages), len(chunks), time.Since(start).Round(time.Millisecond))
	for i, ch := range chunks {
		line := fmt.Sprintf("chunk %3d  page %3d  %4d tokens", i, ch.PageNumber, ch.Tokens)
		if *preview > 0 {
			runes := []rune(ch.Text)
			if len(runes) > *preview {
				runes = runes[:*preview]
			}
			line += "  " + string(runes)
		}
		fmt.Println(line)
	}
}
