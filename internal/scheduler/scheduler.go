package scheduler

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tanq16/partdl/internal/downloader"
	"github.com/tanq16/partdl/internal/downloaders/gdrive"
	partdlhttp "github.com/tanq16/partdl/internal/downloaders/http"
	s3resolver "github.com/tanq16/partdl/internal/downloaders/s3"
	"github.com/tanq16/partdl/internal/output"
	"github.com/tanq16/partdl/internal/utils"
)

// DefaultResolvers maps job types to the resolver that turns them into a
// plain HTTP download.
func DefaultResolvers() map[string]utils.Resolver {
	return map[string]utils.Resolver{
		"http":   &partdlhttp.HTTPResolver{},
		"s3":     &s3resolver.S3Resolver{},
		"gdrive": &gdrive.GDriveResolver{},
	}
}

type Config struct {
	// Output receives progress rows and the summary. Default: os.Stdout
	Output io.Writer
	// Width reports the terminal width. Default: output.StdoutWidth
	Width output.WidthFunc
	// Resolvers default to DefaultResolvers().
	Resolvers map[string]utils.Resolver
	// Clock is handed to every downloader. Default: the system clock.
	Clock downloader.Clock
}

type result struct {
	index int
	name  string
	err   error
}

// Run resolves every job, then downloads the resolved ones on numWorkers
// workers. Resolution happens up front so interactive auth prompts finish
// before progress rows are drawn.
func Run(ctx context.Context, jobs []utils.PartdlJob, numWorkers int, cfg Config) error {
	log := utils.GetLogger("scheduler")
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Resolvers == nil {
		cfg.Resolvers = DefaultResolvers()
	}
	numWorkers = max(numWorkers, 1)

	var failures []result
	var ready []int
	for i := range jobs {
		job := &jobs[i]
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		if job.Metadata == nil {
			job.Metadata = make(map[string]any)
		}
		if err := resolveJob(job, cfg.Resolvers); err != nil {
			log.Error().Err(err).Str("job", job.ID).Str("url", job.URL).Msg("job resolution failed")
			failures = append(failures, result{index: i, name: jobName(job), err: err})
			continue
		}
		ready = append(ready, i)
	}
	log.Debug().Int("ready", len(ready)).Int("failed", len(failures)).Msg("jobs resolved")

	manager := output.NewManager(output.ManagerOptions{Output: cfg.Output, Width: cfg.Width})
	sink := output.StyledSink{Next: manager}

	jobCh := make(chan int, len(ready))
	for _, i := range ready {
		jobCh <- i
	}
	close(jobCh)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < min(numWorkers, len(ready)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				if err := downloadJob(ctx, &jobs[i], sink, cfg.Clock); err != nil {
					mu.Lock()
					failures = append(failures, result{index: i, name: jobName(&jobs[i]), err: err})
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	slices.SortFunc(failures, func(a, b result) int { return cmp.Compare(a.index, b.index) })
	errs := make([]output.JobError, 0, len(failures))
	now := time.Now()
	for _, f := range failures {
		errs = append(errs, output.JobError{Name: f.name, Time: now, Error: f.err})
	}
	output.WriteSummary(cfg.Output, len(jobs), errs)
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d downloads failed", len(errs), len(jobs))
	}
	return nil
}

func resolveJob(job *utils.PartdlJob, resolvers map[string]utils.Resolver) error {
	resolver, ok := resolvers[job.JobType]
	if !ok {
		return fmt.Errorf("%w: %s", utils.ErrUnknownJobType, job.JobType)
	}
	if err := resolver.ValidateJob(job); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := resolver.BuildJob(job); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if dir := filepath.Dir(job.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}
	return nil
}

func downloadJob(ctx context.Context, job *utils.PartdlJob, sink downloader.ProgressSink, clock downloader.Clock) error {
	headers := make(map[string]string, len(job.Headers))
	for k, v := range job.Headers {
		headers[k] = v
	}
	d := downloader.New(downloader.Config{
		ID:         job.ID,
		URL:        job.DownloadURL,
		Title:      job.Title,
		OutputPath: job.OutputPath,
		Headers:    headers,
	}, downloader.Options{
		Client:   utils.NewHTTPClient(job.HTTPClientConfig),
		Clock:    clock,
		Progress: sink,
	})
	return d.Download(ctx)
}

func jobName(job *utils.PartdlJob) string {
	if job.OutputPath != "" {
		return job.OutputPath
	}
	return job.URL
}
