package scraper

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// IngestFunc hands a resolved scraper output file to the ingestion
// pipeline. Declared here so the runner does not depend on the service
// package.
type IngestFunc func(ctx context.Context, outputFile, city, segmentID string) error

// Runner triggers the external scraper process for a segment and, when
// the run succeeds, feeds its output file into ingestion. The external
// scraper is a collaborator: this code never parses listings itself.
type Runner struct {
	dir     string
	command string
	ingest  IngestFunc
}

func NewRunner(dir, command string, ingest IngestFunc) *Runner {
	return &Runner{dir: dir, command: command, ingest: ingest}
}

// scrapeReport is the JSON the scraper prints as its last stdout line.
type scrapeReport struct {
	OutputFile string `json:"outputFile"`
}

// Run executes one scrape for the given search URL. It is intended to be
// launched fire-and-forget from segment creation; failures are logged,
// not returned to the creating request.
func (r *Runner) Run(ctx context.Context, searchURL, city, segmentID string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("segment_id", segmentID), zap.String("url", searchURL))
	logger.Info("triggering scraper")

	parts := strings.Fields(r.command)
	if len(parts) == 0 {
		return fmt.Errorf("scraper command not configured")
	}
	args := append(parts[1:], "--", searchURL)
	cmd := exec.CommandContext(ctx, parts[0], args...)
	cmd.Dir = r.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		logger.Error("failed to launch scraper", zap.Error(err))
		return err
	}

	var lastLine string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		lastLine = streamLines(ctx, stdout, "scraper")
	}()
	go func() {
		defer wg.Done()
		streamLines(ctx, stderr, "scraper-err")
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		logger.Error("scraper failed", zap.Error(err))
		return err
	}

	var report scrapeReport
	if err := json.Unmarshal([]byte(lastLine), &report); err != nil || report.OutputFile == "" {
		logger.Error("scraper report missing output file", zap.String("last_line", lastLine))
		return fmt.Errorf("scraper produced no output file report")
	}
	outputFile := report.OutputFile
	if !filepath.IsAbs(outputFile) {
		outputFile = filepath.Join(r.dir, outputFile)
	}
	logger.Info("scraper finished", zap.String("output_file", outputFile))

	if r.ingest == nil {
		return nil
	}
	if err := r.ingest(ctx, outputFile, city, segmentID); err != nil {
		logger.Error("ingestion of scraper output failed", zap.Error(err))
		return err
	}
	return nil
}

// streamLines logs each line of a subprocess stream and returns the last
// non-empty one.
func streamLines(ctx context.Context, r io.Reader, stream string) string {
	logger := logutil.GetLogger(ctx).With(zap.String("stream", stream))
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var last string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		logger.Debug(line)
		last = line
	}
	return last
}
