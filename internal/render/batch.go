package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"invoicer/internal/logger"
)

// ExportResult is the outcome of rendering one document.
type ExportResult struct {
	Index  int    `json:"index"`
	Number string `json:"number"`
	Path   string `json:"path,omitempty"`
	Bytes  int    `json:"bytes,omitempty"`
	Error  error  `json:"-"`
	Status string `json:"status"` // "ok", "failed" or "skipped"
}

type exportJob struct {
	index int
	name  string
	doc   Document
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uniqueNames assigns file names in input order. Invoice numbers are not
// unique, so repeats get a numeric suffix.
func uniqueNames(docs []Document) []string {
	names := make([]string, len(docs))
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		name := FileName(d.Number)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d.pdf", name[:len(name)-len(".pdf")], n)
		}
		names[i] = name
	}
	return names
}

// FileName returns the PDF file name for an invoice number.
func FileName(number string) string {
	name := unsafeFileChars.ReplaceAllString(number, "_")
	if name == "" || name == "_" {
		name = "invoice"
	}
	return name + ".pdf"
}

// ExportBatch renders docs to <dir>/<number>.pdf using a pool of workers.
// Results are returned in input order; a failing document does not stop the
// others. Documents not yet started when ctx is cancelled are reported as
// skipped.
func ExportBatch(ctx context.Context, docs []Document, dir string, workers int) ([]ExportResult, error) {
	const op = "render.ExportBatch"
	log := logger.WithComponent("export")

	if workers <= 0 {
		workers = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: creating output directory: %w", op, err)
	}

	jobs := make(chan exportJob, len(docs))
	results := make([]ExportResult, len(docs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				res := ExportResult{Index: job.index, Number: job.doc.Number}
				if err := ctx.Err(); err != nil {
					res.Status = "skipped"
					res.Error = err
					results[job.index] = res
					continue
				}

				log.Debug().
					Int("worker", workerID).
					Str("number", job.doc.Number).
					Int("index", job.index+1).
					Msg("Worker rendering invoice")

				data, err := PDF(job.doc)
				if err == nil {
					res.Path = filepath.Join(dir, job.name)
					err = os.WriteFile(res.Path, data, 0o644)
					res.Bytes = len(data)
				}
				if err != nil {
					res.Status = "failed"
					res.Error = err
					res.Path = ""
					res.Bytes = 0
					log.Error().Err(err).Str("number", job.doc.Number).Msg("Failed to export invoice")
				} else {
					res.Status = "ok"
				}
				results[job.index] = res
			}
		}(w)
	}

	names := uniqueNames(docs)
	for i, doc := range docs {
		jobs <- exportJob{index: i, name: names[i], doc: doc}
	}
	close(jobs)

	wg.Wait()

	var failed int
	for _, r := range results {
		if r.Status != "ok" {
			failed++
		}
	}
	log.Info().
		Int("total", len(docs)).
		Int("failed", failed).
		Str("dir", dir).
		Msg("Batch export finished")

	return results, nil
}
