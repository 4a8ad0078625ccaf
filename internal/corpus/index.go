// Package corpus holds the fitted, read-only snapshot of historical complaints:
// one record per complaint (complaint + TF-IDF vector) and the per-location
// partition used to scope duplicate search.
package corpus

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/civicdex/internal/domain"
	"github.com/kailas-cloud/civicdex/internal/domain/complaint"
	"github.com/kailas-cloud/civicdex/internal/vectorspace"
)

// DefaultWorkers is the analysis parallelism used when Options.Workers is not set.
const DefaultWorkers = 4

// Options configures Build.
type Options struct {
	MaxFeatures int // <= 0 means domain.DefaultMaxFeatures
	Workers     int // <= 0 means DefaultWorkers
}

// Record is one indexed complaint together with its vector.
type Record struct {
	complaint complaint.Complaint
	vector    vectorspace.Vector
}

// Complaint returns the indexed complaint.
func (r *Record) Complaint() complaint.Complaint { return r.complaint }

// Vector returns the complaint's TF-IDF vector.
func (r *Record) Vector() vectorspace.Vector { return r.vector }

// Index is an immutable fitted corpus. Safe for concurrent reads.
type Index struct {
	space   *vectorspace.Space
	records []Record
	areas   map[string][]int
	builtAt time.Time
}

// Build fits a vector space over all complaints and indexes them by location.
// Row order follows the input order.
func Build(ctx context.Context, complaints []complaint.Complaint, opts Options) (*Index, error) {
	if len(complaints) == 0 {
		return nil, fmt.Errorf("build corpus: %w", domain.ErrEmptyCorpus)
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = domain.DefaultMaxFeatures
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	terms := make([][]string, len(complaints))
	err := forEachChunk(ctx, len(complaints), opts.Workers, func(i int) {
		terms[i] = vectorspace.Terms(complaints[i].Normalized())
	})
	if err != nil {
		return nil, fmt.Errorf("analyze complaints: %w", err)
	}

	space, err := vectorspace.Fit(terms, opts.MaxFeatures)
	if err != nil {
		return nil, fmt.Errorf("fit vector space: %w", err)
	}

	records := make([]Record, len(complaints))
	err = forEachChunk(ctx, len(complaints), opts.Workers, func(i int) {
		records[i] = Record{complaint: complaints[i], vector: space.Transform(terms[i])}
	})
	if err != nil {
		return nil, fmt.Errorf("project complaints: %w", err)
	}

	areas := make(map[string][]int)
	for i := range records {
		loc := records[i].complaint.Location()
		areas[loc] = append(areas[loc], i)
	}

	return &Index{
		space:   space,
		records: records,
		areas:   areas,
		builtAt: time.Now(),
	}, nil
}

// forEachChunk runs fn over [0, n) split into contiguous chunks, one goroutine per chunk.
func forEachChunk(ctx context.Context, n, workers int, fn func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err //nolint:wrapcheck // context error is wrapped by the caller
					}
				}
				fn(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck // wrapped by the caller
	}
	return ctx.Err()
}

// Hit is the best same-area match for a query. Row is -1 when the area has no records.
type Hit struct {
	Row        int
	Score      float64
	Candidates int
}

// Best returns the highest-scoring record in location for already-normalized text.
// Ties keep the earliest row.
func (ix *Index) Best(location, normalized string) Hit {
	rows := ix.areas[location]
	if len(rows) == 0 {
		return Hit{Row: -1}
	}

	q := ix.space.Transform(vectorspace.Terms(normalized))
	best := Hit{Row: rows[0], Score: vectorspace.Cosine(q, ix.records[rows[0]].vector), Candidates: len(rows)}
	for _, row := range rows[1:] {
		if s := vectorspace.Cosine(q, ix.records[row].vector); s > best.Score {
			best.Row = row
			best.Score = s
		}
	}
	return best
}

// Record returns the record at row.
func (ix *Index) Record(row int) *Record { return &ix.records[row] }

// Len returns the number of indexed complaints.
func (ix *Index) Len() int { return len(ix.records) }

// Vocabulary returns the number of fitted terms.
func (ix *Index) Vocabulary() int { return ix.space.Size() }

// Areas returns the number of distinct locations.
func (ix *Index) Areas() int { return len(ix.areas) }

// AreaSize returns how many complaints are indexed for location.
func (ix *Index) AreaSize(location string) int { return len(ix.areas[location]) }

// BuiltAt returns when the snapshot was built.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }
