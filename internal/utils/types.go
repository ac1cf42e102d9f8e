package utils

// Resolver turns a job's user-facing locator into a plain HTTP download.
// Every job type ends up in the same resumable downloader once resolved.
type Resolver interface {
	ValidateJob(job *PartdlJob) error
	BuildJob(job *PartdlJob) error
}

type PartdlJob struct {
	ID               string
	JobType          string
	URL              string
	DownloadURL      string
	Title            string
	OutputPath       string
	Headers          map[string]string
	Metadata         map[string]any
	HTTPClientConfig HTTPClientConfig
}

type BatchEntry struct {
	OutputPath string `yaml:"op,omitempty"`
	Link       string `yaml:"link"`
	Title      string `yaml:"title,omitempty"`
}

type BatchFile map[string][]BatchEntry
