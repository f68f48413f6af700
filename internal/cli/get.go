package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/fetchpool/fetch"
	"github.com/wesleyorama2/fetchpool/internal/output"
	"github.com/wesleyorama2/fetchpool/pkg/jsonpath"
)

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Make a GET request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		headers, _ := cmd.Flags().GetStringArray("header")
		verbose, _ := cmd.Flags().GetBool("verbose")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		noColor, _ := cmd.Flags().GetBool("no-color")
		extract, _ := cmd.Flags().GetString("extract")
		progress, _ := cmd.Flags().GetBool("progress")

		opts := fetch.Options{
			Method:  "GET",
			URL:     args[0],
			Headers: parseHeaderFlags(headers),
			Timeout: timeout,
		}
		if progress {
			opts.OnProgress = func(loaded, total int64) {
				fmt.Fprintf(os.Stderr, "\r%d/%d bytes", loaded, total)
			}
		}

		runOnce(opts, output.NewFormatter(verbose, noColor), extract)
	},
}

// runOnce sends a single request and prints its outcome. Shared by get and
// post.
func runOnce(opts fetch.Options, formatter *output.Formatter, extract string) {
	fmt.Print(formatter.FormatRequest(opts))

	resp, err := fetch.Send(opts).Wait(context.Background())
	if err != nil {
		fmt.Fprint(os.Stderr, formatter.FormatFailure(err))
		os.Exit(1)
	}

	fmt.Print(formatter.FormatResponse(resp))

	if extract != "" {
		value, err := jsonpath.Extract(resp.RawBody, extract)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(value)
	}
}

// parseHeaderFlags turns repeated "Name: value" flags into a header map.
func parseHeaderFlags(flags []string) map[string]string {
	headers := make(map[string]string)
	for _, flag := range flags {
		name, value, found := strings.Cut(flag, ":")
		if !found {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

func init() {
	getCmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	getCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	getCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	getCmd.Flags().Bool("no-color", false, "Disable colored output")
	getCmd.Flags().StringP("extract", "e", "", "JSONPath expression to extract from the response body")
	getCmd.Flags().Bool("progress", false, "Report download progress on stderr")
}
