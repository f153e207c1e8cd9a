// Package batch converts every splat file under a store prefix.
package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/store"
)

// DefaultWorkers is the default number of concurrent conversions.
const DefaultWorkers = 4

// Job is a single conversion.
type Job struct {
	Source string
	Dest   string
}

// Runner converts files through a Converter with a bounded worker pool.
type Runner struct {
	conv      *spz.Converter
	target    spz.Format
	outPrefix string
	workers   int
	overwrite bool
	manifest  bool
	progress  ProgressFunc
	logger    *zap.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithTarget sets the output format. Sources are files of the other format.
func WithTarget(f spz.Format) Option {
	return func(r *Runner) { r.target = f }
}

// WithOutputPrefix writes outputs under prefix instead of next to their sources.
func WithOutputPrefix(prefix string) Option {
	return func(r *Runner) { r.outPrefix = store.NormalizePrefix(prefix) }
}

// WithWorkers sets the number of parallel conversions.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithOverwrite converts sources whose output already exists.
func WithOverwrite(v bool) Option {
	return func(r *Runner) { r.overwrite = v }
}

// WithManifest controls whether Run writes manifest.json. Default true.
func WithManifest(v bool) Option {
	return func(r *Runner) { r.manifest = v }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l.Named("batch") }
}

// NewRunner creates a Runner converting files with conv.
func NewRunner(conv *spz.Converter, opts ...Option) *Runner {
	r := &Runner{
		conv:     conv,
		target:   spz.FormatSPZ,
		workers:  DefaultWorkers,
		manifest: true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan lists the files under prefix and returns the conversions to run.
func (r *Runner) Plan(ctx context.Context, prefix string) ([]Job, error) {
	prefix = store.NormalizePrefix(prefix)
	names, err := r.conv.Store().List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}

	existing := make(map[string]bool, len(names))
	for _, name := range names {
		existing[name] = true
	}

	source := r.sourceFormat()
	var jobs []Job
	for _, name := range names {
		if f, err := spz.FormatOf(name); err != nil || f != source {
			continue
		}
		dest := r.destName(prefix, name)
		if !r.overwrite && existing[dest] {
			r.logger.Debug("skipping converted file", zap.String("name", name))
			continue
		}
		jobs = append(jobs, Job{Source: name, Dest: dest})
	}
	return jobs, nil
}

// Run plans and converts every file under prefix. Failed files are recorded
// in the manifest and their errors combined into the returned error.
func (r *Runner) Run(ctx context.Context, prefix string) (*Manifest, error) {
	jobs, err := r.Plan(ctx, prefix)
	if err != nil {
		return nil, err
	}

	m, err := r.Convert(ctx, jobs)
	if m != nil && r.manifest {
		dir := prefix
		if r.outPrefix != "" {
			dir = r.outPrefix
		}
		if werr := WriteManifest(ctx, r.conv.Store(), dir, m); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	return m, err
}

// Convert runs jobs with the configured worker pool.
func (r *Runner) Convert(ctx context.Context, jobs []Job) (*Manifest, error) {
	startTime := time.Now()
	r.reportProgress(Progress{Phase: "plan", FilesTotal: len(jobs), StartTime: startTime})

	m := &Manifest{
		Version:        ManifestVersion,
		Target:         string(r.target),
		FractionalBits: r.conv.FractionalBits(),
		Compression:    r.conv.ContainerCodec().Name(),
		Files:          make([]FileResult, len(jobs)),
	}

	var (
		mu   sync.Mutex
		errs error
		done Progress
	)
	done.FilesTotal = len(jobs)
	done.StartTime = startTime

	// Process jobs in parallel.
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

launch:
	for i, job := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break launch
		}
		// Both cases may be ready at once; never start a job after cancel.
		if ctx.Err() != nil {
			<-sem
			break
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()

			fr := FileResult{Source: job.Source, Dest: job.Dest}
			res, err := r.conv.Convert(ctx, job.Source, job.Dest)
			if err == nil {
				fr.Points, fr.SHDegree = res.Points, res.SHDegree
				fr.InputBytes, fr.OutputBytes = res.InputBytes, res.OutputBytes
				fr.Seconds = res.Duration.Seconds()
			} else {
				fr.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			m.Files[i] = fr
			done.File = job.Source
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("converting %s: %w", job.Source, err))
				done.FilesFailed++
				done.Error = err
				r.reportProgress(Progress{Phase: "error", File: job.Source, Error: err, StartTime: startTime})
				return
			}
			done.FilesDone++
			done.InputBytes += fr.InputBytes
			done.OutputBytes += fr.OutputBytes
			m.PointCount += int64(fr.Points)
			done.Phase = "convert"
			r.reportProgress(done)
		}(i, job)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}

	// Drop jobs never started after cancellation.
	files := m.Files[:0]
	for _, fr := range m.Files {
		if fr.Source != "" {
			files = append(files, fr)
		}
	}
	m.Files = files
	m.FileCount = done.FilesDone
	m.FailedCount = done.FilesFailed
	m.InputBytes = done.InputBytes
	m.OutputBytes = done.OutputBytes
	m.BuiltAt = time.Now()

	done.Phase = "done"
	r.reportProgress(done)
	r.logger.Info("batch finished",
		zap.Int("files", m.FileCount),
		zap.Int("failed", m.FailedCount),
		zap.Int64("points", m.PointCount),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return m, errs
}

func (r *Runner) sourceFormat() spz.Format {
	if r.target == spz.FormatPLY {
		return spz.FormatSPZ
	}
	return spz.FormatPLY
}

func (r *Runner) destName(prefix, name string) string {
	base := spz.ReplaceExt(name, r.target)
	if r.outPrefix == "" {
		return base
	}
	return r.outPrefix + strings.TrimPrefix(base, prefix)
}

func (r *Runner) reportProgress(p Progress) {
	if r.progress != nil {
		r.progress(p)
	}
}
