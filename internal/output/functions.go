package output

import (
	"fmt"
	"strings"
)

// FormatBytes converts bytes to human-readable format
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Sink is the two-operation contract a download reports through.
type Sink interface {
	Register() int
	Update(id int, text string)
}

// StyledSink colors status messages by their leading verb before handing
// them to the wrapped sink.
type StyledSink struct {
	Next Sink
}

func (s StyledSink) Register() int {
	return s.Next.Register()
}

func (s StyledSink) Update(id int, text string) {
	s.Next.Update(id, styleStatus(text))
}

func styleStatus(text string) string {
	indicator := func(symbol string) string { return StyleSymbols[symbol] + " " }
	switch {
	case strings.HasPrefix(text, "Completed"), strings.HasPrefix(text, "File already complete"):
		return FSuccess(indicator("pass") + text)
	case strings.HasPrefix(text, "Failed"):
		return FError(indicator("fail") + text)
	case strings.HasPrefix(text, "Another instance"), strings.HasPrefix(text, "Retrying"), strings.HasPrefix(text, "Skipped"):
		return FWarning(indicator("warning") + text)
	case strings.HasPrefix(text, "Downloading"), strings.HasPrefix(text, "Downloaded"):
		return FPending(indicator("pending") + text)
	default:
		return FDebug(indicator("bullet") + text)
	}
}
