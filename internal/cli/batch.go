package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/fetchpool/fetch"
	"github.com/wesleyorama2/fetchpool/internal/config"
	"github.com/wesleyorama2/fetchpool/internal/metrics"
	"github.com/wesleyorama2/fetchpool/internal/output"
	"github.com/wesleyorama2/fetchpool/pkg/jsonpath"
	"github.com/wesleyorama2/fetchpool/pkg/jsonschema"
	"github.com/wesleyorama2/fetchpool/pool"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a batch file of requests through the concurrency pool",
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		verbose, _ := cmd.Flags().GetBool("verbose")
		noColor, _ := cmd.Flags().GetBool("no-color")

		if file == "" {
			fmt.Println("Error: batch file is required")
			cmd.Help()
			return
		}

		batch, err := config.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading batch file: %v\n", err)
			os.Exit(1)
		}

		if errs := config.Validate(batch); len(errs) > 0 {
			fmt.Fprintln(os.Stderr, "Batch validation errors:")
			for _, err := range errs {
				fmt.Fprintf(os.Stderr, "  - %s\n", err.Error())
			}
			os.Exit(1)
		}

		if concurrency > 0 {
			batch.Concurrency = concurrency
		}

		formatter := output.NewFormatter(verbose, noColor)
		if !runBatch(batch, formatter, noColor) {
			os.Exit(1)
		}
	},
}

// runBatch schedules every request of the batch onto the pool, reports each
// outcome as it completes, and prints the latency summary. It returns false
// when any request failed.
func runBatch(batch *config.Batch, formatter *output.Formatter, noColor bool) bool {
	p := pool.New(batch.Concurrency)
	recorder := metrics.NewRecorder()

	type submission struct {
		request config.Request
		job     *pool.Job
		started time.Time
	}

	submissions := make([]submission, 0, len(batch.Requests))
	for _, req := range batch.Requests {
		req := req
		opts := req.Options(*batch)
		started := time.Now()
		job := p.Enqueue(func() (*fetch.Task, error) {
			return fetch.Send(opts), nil
		})
		submissions = append(submissions, submission{request: req, job: job, started: started})
	}

	allOK := true
	for _, sub := range submissions {
		result, err := sub.job.Wait(context.Background())
		latency := time.Since(sub.started)

		if err != nil {
			recorder.Record(latency, false, 0)
			allOK = false
			fmt.Printf("%s %s\n", output.ErrorIcon(noColor), sub.request.DisplayName())
			fmt.Print(formatter.FormatFailure(err))
			continue
		}

		resp := result.Response
		recorder.Record(latency, true, int64(len(resp.RawBody)))
		fmt.Printf("%s %s\n", output.SuccessIcon(noColor), sub.request.DisplayName())
		if formatter.Verbose {
			fmt.Print(formatter.FormatResponse(resp))
		}

		if !reportExtractions(sub.request, resp) {
			allOK = false
		}
		if !reportValidation(sub.request, resp, noColor) {
			allOK = false
		}
	}

	fmt.Print(formatter.FormatSummary(recorder.Summary()))
	return allOK
}

// reportExtractions evaluates the request's extract expressions against the
// response body and prints them.
func reportExtractions(req config.Request, resp *fetch.Response) bool {
	if len(req.Extract) == 0 {
		return true
	}

	values, err := jsonpath.ExtractAll(resp.RawBody, req.Extract)
	for name, value := range values {
		fmt.Printf("  %s = %s\n", name, value)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: extraction failed for %s: %v\n", req.DisplayName(), err)
		return false
	}
	return true
}

// reportValidation checks the response body against the request's inline
// JSON Schema, when one is configured.
func reportValidation(req config.Request, resp *fetch.Response, noColor bool) bool {
	if len(req.Validate) == 0 {
		return true
	}

	schema, err := json.Marshal(req.Validate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema for %s: %v\n", req.DisplayName(), err)
		return false
	}

	ok, validationErrs := jsonschema.Validate(resp.RawBody, string(schema))
	if !ok {
		fmt.Fprintf(os.Stderr, "%s schema validation failed for %s: %v\n",
			output.ErrorIcon(noColor), req.DisplayName(), validationErrs)
		return false
	}
	return true
}

func init() {
	batchCmd.Flags().StringP("file", "f", "", "Batch file (required)")
	batchCmd.Flags().IntP("concurrency", "c", 0, "Override the batch file's concurrency limit")
	batchCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	batchCmd.Flags().Bool("no-color", false, "Disable colored output")
}
