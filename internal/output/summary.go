package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// JobError records a failed job for the end-of-run summary.
type JobError struct {
	Name  string
	Time  time.Time
	Error error
}

// WriteSummary prints the completion counts followed by a numbered list of
// errors, if any.
func WriteSummary(w io.Writer, total int, errs []JobError) {
	indent := strings.Repeat(" ", 2)
	fmt.Fprintln(w)
	fmt.Fprintln(w, indent+success2Style.Render(fmt.Sprintf("Completed %d of %d", total-len(errs), total)))
	if len(errs) == 0 {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintln(w, indent+errorStyle.Render(fmt.Sprintf("Failed %d of %d", len(errs), total)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, indent+errorStyle.Bold(true).Render("Errors:"))
	for i, e := range errs {
		fmt.Fprintf(w, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", e.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("Job: %s", e.Name)))
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", e.Error)))
	}
	fmt.Fprintln(w)
}
