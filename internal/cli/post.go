package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/fetchpool/fetch"
	"github.com/wesleyorama2/fetchpool/internal/output"
)

var postCmd = &cobra.Command{
	Use:   "post URL",
	Short: "Make a POST request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		headers, _ := cmd.Flags().GetStringArray("header")
		body, _ := cmd.Flags().GetString("body")
		verbose, _ := cmd.Flags().GetBool("verbose")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		noColor, _ := cmd.Flags().GetBool("no-color")
		extract, _ := cmd.Flags().GetString("extract")

		opts := fetch.Options{
			Method:  "POST",
			URL:     args[0],
			Headers: parseHeaderFlags(headers),
			Timeout: timeout,
		}
		if body != "" {
			opts.Body = body
		}

		runOnce(opts, output.NewFormatter(verbose, noColor), extract)
	},
}

func init() {
	postCmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	postCmd.Flags().StringP("body", "b", "", "Request body")
	postCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	postCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	postCmd.Flags().Bool("no-color", false, "Disable colored output")
	postCmd.Flags().StringP("extract", "e", "", "JSONPath expression to extract from the response body")
}
