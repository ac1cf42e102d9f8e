package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanq16/partdl/internal/utils"
	"golang.org/x/net/http/httpguts"
)

const (
	MaxRetries = 5
	bufferSize = 32 * 1024
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes one remote resource and where it lands on disk.
type Config struct {
	ID         string
	URL        string
	Title      string
	OutputPath string
	Headers    map[string]string
}

// Options carries the collaborators of a Downloader. Zero values fall back to
// http.DefaultClient, the OS filesystem, the system clock and no progress.
type Options struct {
	Client   HTTPDoer
	FS       FileSystem
	Clock    Clock
	Progress ProgressSink
	Logger   *zerolog.Logger
}

type Downloader struct {
	cfg      Config
	client   HTTPDoer
	fs       FileSystem
	clock    Clock
	progress ProgressSink
	log      zerolog.Logger

	title    string
	register sync.Once
	track    int
}

func New(cfg Config, opts Options) *Downloader {
	d := &Downloader{
		cfg:      cfg,
		client:   opts.Client,
		fs:       opts.FS,
		clock:    opts.Clock,
		progress: opts.Progress,
		title:    truncateTitle(cfg.Title),
	}
	if d.client == nil {
		d.client = http.DefaultClient
	}
	if d.fs == nil {
		d.fs = OSFileSystem{}
	}
	if d.clock == nil {
		d.clock = SystemClock{}
	}
	if d.progress == nil {
		d.progress = NopSink{}
	}
	logger := utils.GetLogger("downloader")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	d.log = logger.With().Str("job", cfg.ID).Str("url", cfg.URL).Str("output", cfg.OutputPath).Logger()
	return d
}

func (d *Downloader) report(text string) {
	d.register.Do(func() {
		d.track = d.progress.Register()
	})
	d.progress.Update(d.track, text)
}

// Download fetches the resource into OutputPath, resuming from any partial
// file left by an earlier run. It retries transient failures with exponential
// backoff and returns the last error once MaxRetries is exhausted.
func (d *Downloader) Download(ctx context.Context) error {
	var lastErr error
	for attempt := 1; ; attempt++ {
		err := d.tryDownload(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return d.settle(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			d.log.Debug().Err(ctxErr).Msg("download cancelled")
			return ctxErr
		}
		lastErr = err
		if attempt > MaxRetries {
			break
		}
		delay := time.Duration(1<<attempt) * time.Second
		d.log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("download attempt failed, retrying")
		d.report(retryMessage(d.title, delay, attempt, err))
		if err := d.clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	d.log.Error().Err(lastErr).Msg("download failed after retries")
	d.report(failedMessage(d.title, lastErr))
	return lastErr
}

// settle turns the non-retryable outcomes into success.
func (d *Downloader) settle(err error) error {
	if errors.Is(err, ErrRangeNotSatisfiable) {
		return d.finalizeRemaining()
	}
	d.log.Warn().Msg("server reported no size, leaving local state untouched")
	d.report(unsupportedMessage(d.title))
	return nil
}

// finalizeRemaining handles a 416 on the transfer request: whatever partial
// data exists already covers the resource.
func (d *Downloader) finalizeRemaining() error {
	temp := TempPath(d.cfg.OutputPath)
	size, exists, err := fileSize(d.fs, temp)
	if err != nil {
		return ioError("error checking partial file", err)
	}
	if !exists {
		d.log.Debug().Msg("range not satisfiable with no partial file")
		return nil
	}
	if err := d.fs.Rename(temp, d.cfg.OutputPath); err != nil {
		d.log.Error().Err(err).Msg("error finalizing partial file")
		return ioError("error finalizing partial file", err)
	}
	d.log.Info().Int64("size", size).Msg("partial file already complete, finalized")
	d.report(completedMessage(d.title, size))
	return nil
}

// reconcile brings the final/partial pair into a resumable state and returns
// the number of bytes already on disk. done is true when the final file
// already matches the remote size.
func (d *Downloader) reconcile(ctx context.Context) (existing int64, done bool, err error) {
	final := d.cfg.OutputPath
	temp := TempPath(final)

	finalSize, finalExists, err := fileSize(d.fs, final)
	if err != nil {
		return 0, false, ioError("error checking output file", err)
	}
	if finalExists {
		if _, tempExists, err := fileSize(d.fs, temp); err != nil {
			return 0, false, ioError("error checking partial file", err)
		} else if tempExists {
			d.log.Debug().Msg("removing stale partial file")
			if err := d.fs.Remove(temp); err != nil {
				return 0, false, ioError("error removing stale partial file", err)
			}
		}
		remote, err := d.probe(ctx)
		if err != nil {
			return 0, false, err
		}
		d.log.Debug().Int64("remote", remote).Int64("local", finalSize).Msg("probed remote size")
		if remote == finalSize {
			return finalSize, true, nil
		}
		if err := d.fs.Rename(final, temp); err != nil {
			return 0, false, ioError("error moving output file to partial", err)
		}
	}

	tempSize, _, err := fileSize(d.fs, temp)
	if err != nil {
		return 0, false, ioError("error checking partial file", err)
	}
	return tempSize, false, nil
}

func (d *Downloader) tryDownload(ctx context.Context) error {
	existing, done, err := d.reconcile(ctx)
	if err != nil {
		return err
	}
	if done {
		d.log.Info().Msg("output already complete, skipping")
		d.report(skipMessage(d.title))
		return nil
	}

	req, err := d.newRequest(ctx)
	if err != nil {
		return httpError("error creating GET request", err)
	}
	if existing > 0 {
		rangeHeader := fmt.Sprintf("bytes=%d-", existing)
		if !httpguts.ValidHeaderFieldValue(rangeHeader) {
			return &Error{Kind: KindInvalidRange, Op: "resume", Err: fmt.Errorf("bad range value %q", rangeHeader)}
		}
		req.Header.Set("Range", rangeHeader)
		d.log.Debug().Int64("offset", existing).Msg("resuming download")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return httpError("error executing GET request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		return &Error{Kind: KindRangeNotSatisfiable, Op: "transfer"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError("transfer", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	lock, err := d.fs.TryLock(LockPath(d.cfg.OutputPath))
	if errors.Is(err, ErrLocked) {
		d.log.Info().Msg("another instance holds the lock, aborting")
		d.report(lockContentionMessage)
		return nil
	}
	if err != nil {
		return ioError("error acquiring lock", err)
	}
	locked := true
	defer func() {
		if locked {
			if err := lock.Unlock(); err != nil {
				d.log.Debug().Err(err).Msg("error releasing lock")
			}
		}
	}()

	if err := d.verifyUnchanged(existing); err != nil {
		locked = false
		if relErr := lock.Release(); relErr != nil {
			d.log.Debug().Err(relErr).Msg("error releasing lock")
		}
		d.log.Warn().Err(err).Msg("local state changed before the lock was taken")
		return err
	}

	// Without O_CREATE a partial file that vanished fails the open instead of
	// being recreated empty under a non-zero offset.
	flags := os.O_WRONLY | os.O_APPEND
	switch {
	case existing == 0:
		flags |= os.O_CREATE
	case resp.StatusCode != http.StatusPartialContent:
		d.log.Warn().Int("status", resp.StatusCode).Msg("server ignored range, restarting from zero")
		flags |= os.O_TRUNC
		existing = 0
	}
	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = resp.ContentLength + existing
	}

	temp := TempPath(d.cfg.OutputPath)
	f, err := d.fs.OpenFile(temp, flags, 0644)
	if err != nil {
		return ioError("error opening partial file", err)
	}
	downloaded, err := d.stream(resp.Body, f, existing, total)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = ioError("error closing partial file", closeErr)
	}
	if err != nil {
		return err
	}

	if err := d.fs.Rename(temp, d.cfg.OutputPath); err != nil {
		return ioError("error finalizing download", err)
	}
	locked = false
	if err := lock.Release(); err != nil {
		d.log.Debug().Err(err).Msg("error releasing lock")
	}
	d.log.Info().Int64("size", downloaded).Msg("download finalized")
	d.report(completedMessage(d.title, downloaded))
	return nil
}

// verifyUnchanged re-reads the state reconcile saw. Another instance may have
// finalized or extended the partial file while this one waited for headers.
func (d *Downloader) verifyUnchanged(expected int64) error {
	_, finalExists, err := fileSize(d.fs, d.cfg.OutputPath)
	if err != nil {
		return ioError("error checking output file", err)
	}
	if finalExists {
		return ioError("verify", errors.New("output file appeared while waiting for the lock"))
	}
	size, _, err := fileSize(d.fs, TempPath(d.cfg.OutputPath))
	if err != nil {
		return ioError("error checking partial file", err)
	}
	if size != expected {
		return ioError("verify", fmt.Errorf("partial file is %d bytes, expected %d", size, expected))
	}
	return nil
}

// stream appends body to w chunk by chunk, reporting progress after each one.
func (d *Downloader) stream(body io.Reader, w io.Writer, downloaded, total int64) (int64, error) {
	speed := newSpeedSampler(d.clock)
	buffer := make([]byte, bufferSize)
	for {
		n, err := body.Read(buffer)
		if n > 0 {
			if _, writeErr := w.Write(buffer[:n]); writeErr != nil {
				return downloaded, ioError("error writing to partial file", writeErr)
			}
			downloaded += int64(n)
			d.report(progressMessage(d.title, downloaded, total, speed.add(int64(n))))
		}
		if err != nil {
			if err == io.EOF {
				return downloaded, nil
			}
			return downloaded, httpError("error reading response body", err)
		}
	}
}

func (d *Downloader) newRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range d.cfg.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
