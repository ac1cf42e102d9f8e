package cmd

import (
	"context"
	"fmt"
	"io"
	u "net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/partdl/internal/output"
	"github.com/tanq16/partdl/internal/scheduler"
	"github.com/tanq16/partdl/internal/utils"
)

var (
	workers       int
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	debug         bool
	logFile       string

	rootOutput string
	rootTitle  string

	globalHTTPConfig utils.HTTPClientConfig
	logCloser        io.Closer
)

var PartdlVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "partdl [URL]",
	Short: "partdl is a resumable CLI download manager",
	Long: `partdl downloads files over HTTP(S), from S3 and from Google Drive.
Interrupted downloads resume from the .part file next to the output path.

Examples:
  partdl https://example.com/ubuntu.iso
  partdl http https://example.com/file.zip -o downloads/file.zip
  partdl s3 s3://mybucket/path/to/file.zip --profile work
  partdl batch downloads.yaml -w 4`,
	Version:           PartdlVersion,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runJobs(cmd.Context(), []utils.PartdlJob{rootJob(args[0])})
	},
}

// rootJob routes a bare link to the resolver its scheme or host implies.
func rootJob(link string) utils.PartdlJob {
	return newJob(utils.DetermineDownloadType(link), link, rootOutput, rootTitle)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		output.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	utils.ToolUserAgent = "partdl/" + PartdlVersion

	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "Number of downloads to run in parallel")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser agent)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", fmt.Sprintf("Write logs to this file (e.g. %s)", utils.LogFile))

	rootCmd.Flags().StringVarP(&rootOutput, "output", "o", "", "Output file path (inferred if not provided)")
	rootCmd.Flags().StringVar(&rootTitle, "title", "", "Title shown in the progress row")

	rootCmd.AddCommand(newHTTPCmd())
	rootCmd.AddCommand(newS3Cmd())
	rootCmd.AddCommand(newGDriveCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCleanCmd())
}

func setupGlobals(cmd *cobra.Command, args []string) error {
	closer, err := utils.InitLogger(debug, logFile)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	logCloser = closer

	if userAgent == "randomize" {
		userAgent = utils.GetRandomUserAgent()
	}
	// Credentials embedded in the proxy URL move into the dedicated fields.
	if parsedProxy, err := u.Parse(proxyURL); err == nil && parsedProxy.User != nil && proxyUsername == "" {
		proxyUsername = parsedProxy.User.Username()
		if password, set := parsedProxy.User.Password(); set {
			proxyPassword = password
		}
		parsedProxy.User = nil
		proxyURL = parsedProxy.String()
	}
	headerMap, err := utils.ParseHeaderArgs(headers)
	if err != nil {
		return err
	}
	globalHTTPConfig = utils.HTTPClientConfig{
		Timeout:       timeout,
		KATimeout:     kaTimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     userAgent,
		Headers:       headerMap,
	}
	log := utils.GetLogger("cmd")
	log.Debug().Str("command", cmd.Name()).Int("workers", workers).Msg("configuration loaded")
	return nil
}

func newJob(jobType, link, outputPath, title string) utils.PartdlJob {
	return utils.PartdlJob{
		JobType:          jobType,
		URL:              link,
		OutputPath:       outputPath,
		Title:            title,
		HTTPClientConfig: globalHTTPConfig,
		Metadata:         make(map[string]any),
	}
}

func runJobs(ctx context.Context, jobs []utils.PartdlJob) error {
	return scheduler.Run(ctx, jobs, workers, scheduler.Config{})
}
