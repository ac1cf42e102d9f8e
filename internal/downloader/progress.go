package downloader

import (
	"fmt"
	"time"

	"github.com/tanq16/partdl/internal/output"
)

// ProgressSink receives status lines for one track per download.
type ProgressSink interface {
	Register() int
	Update(id int, text string)
}

type NopSink struct{}

func (NopSink) Register() int       { return 0 }
func (NopSink) Update(int, string) {}

const (
	titleWidth     = 30
	bytesPerMB     = 1024 * 1024
	sampleInterval = time.Second
)

const lockContentionMessage = "Another instance is downloading — aborting"

// truncateTitle keeps titles within titleWidth visible code points,
// replacing the tail with a single ellipsis when it has to cut.
func truncateTitle(title string) string {
	if output.VisibleLen(title) <= titleWidth {
		return title
	}
	return output.TruncateANSI(title, titleWidth-1) + "…"
}

func toMB(b int64) float64 {
	return float64(b) / bytesPerMB
}

func progressMessage(title string, downloaded, total int64, speed string) string {
	if total >= 0 {
		pct := 0.0
		if total > 0 {
			pct = float64(downloaded) / float64(total) * 100
		}
		return fmt.Sprintf("Downloading %s: %.2f MB / %.2f MB (%.2f%%)%s", title, toMB(downloaded), toMB(total), pct, speed)
	}
	return fmt.Sprintf("Downloaded %s: %.2f MB%s", title, toMB(downloaded), speed)
}

func skipMessage(title string) string {
	return fmt.Sprintf("File already complete: %s — skipping download", title)
}

func completedMessage(title string, size int64) string {
	return fmt.Sprintf("Completed %s: %.2f MB", title, toMB(size))
}

func unsupportedMessage(title string) string {
	return fmt.Sprintf("Skipped %s: server reported no size to compare against", title)
}

func retryMessage(title string, delay time.Duration, attempt int, err error) string {
	return fmt.Sprintf("Retrying %s in %ds (attempt %d/%d): %v", title, int(delay.Seconds()), attempt, MaxRetries, err)
}

func failedMessage(title string, err error) string {
	return fmt.Sprintf("Failed %s: %v", title, err)
}

// speedSampler keeps a one-second window of received bytes and caches the
// formatted rate between samples.
type speedSampler struct {
	clock  Clock
	last   time.Time
	bytes  int64
	suffix string
}

func newSpeedSampler(clock Clock) *speedSampler {
	return &speedSampler{clock: clock, last: clock.Now()}
}

func (s *speedSampler) add(n int64) string {
	s.bytes += n
	now := s.clock.Now()
	elapsed := now.Sub(s.last)
	if elapsed >= sampleInterval {
		mbps := float64(s.bytes) / elapsed.Seconds() / bytesPerMB
		s.suffix = fmt.Sprintf(" | %.2f MB/s", mbps)
		s.last = now
		s.bytes = 0
	}
	return s.suffix
}
