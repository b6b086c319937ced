package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/arcprompt/internal/adapters/store/sqlite"
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchConcurrency = 8
	maxBatchLineBytes       = 1 << 20
)

type batchOptions struct {
	file        string
	concurrency int
	asJSON      bool
	report      bool
	exportDB    string
}

type batchResult struct {
	Line int `json:"line"`
	domain.PromptHeaderResult
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Resolve headers for JSON Lines requests",
		Long:  "batch reads one JSON object per line ({\"tone\", \"language\", \"genre\", \"scene\", \"arc\", \"character_name\"}), resolves them concurrently through one engine and prints the results in input order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", opts.concurrency)
			}

			input, closeInput, err := openBatchInput(cmd, opts.file)
			if err != nil {
				return err
			}
			defer closeInput()

			requests, err := readBatchRequests(input)
			if err != nil {
				return err
			}

			app, err := root.wireApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.logger.Sync() }()

			results, err := resolveBatch(cmd, app, requests, opts.concurrency)
			if err != nil {
				return err
			}

			if err := writeBatchOutput(cmd.OutOrStdout(), results, opts.asJSON); err != nil {
				return err
			}

			if opts.report {
				if err := writeDiagnosticsReport(cmd.ErrOrStderr(), app); err != nil {
					return err
				}
			}

			if opts.exportDB != "" {
				return exportDiagnostics(cmd, app, opts.exportDB)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "-", "JSON Lines input file, or - for stdin")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", defaultBatchConcurrency, "Number of requests resolved in parallel")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output one JSON result per line")
	cmd.Flags().BoolVar(&opts.report, "report", false, "Print the fallback diagnostics report to stderr")
	cmd.Flags().StringVar(&opts.exportDB, "export-db", "", "Export the fallback diagnostics snapshot to this SQLite database")

	return cmd
}

func openBatchInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open batch input: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}

type batchRequest struct {
	line int
	raw  map[string]any
}

// readBatchRequests parses JSON Lines input. Blank lines are skipped; a line
// that is not a JSON object is an error naming its line number.
func readBatchRequests(input io.Reader) ([]batchRequest, error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLineBytes)

	var requests []batchRequest
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal(text, &raw); err != nil {
			return nil, fmt.Errorf("decode batch line %d: %w", line, err)
		}
		requests = append(requests, batchRequest{line: line, raw: raw})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch input: %w", err)
	}

	return requests, nil
}

func resolveBatch(cmd *cobra.Command, app *app, requests []batchRequest, concurrency int) ([]batchResult, error) {
	results := make([]batchResult, len(requests))

	group, ctx := errgroup.WithContext(cmd.Context())
	group.SetLimit(concurrency)
	for i, request := range requests {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = batchResult{
				Line:               request.line,
				PromptHeaderResult: app.engine.BuildHeaderLoose(request.raw),
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("resolve batch: %w", err)
	}

	return results, nil
}

func writeBatchOutput(w io.Writer, results []batchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, result := range results {
			if err := enc.Encode(result); err != nil {
				return err
			}
		}
		return nil
	}

	for _, result := range results {
		if _, err := io.WriteString(w, result.Header); err != nil {
			return err
		}
	}

	return nil
}

func exportDiagnostics(cmd *cobra.Command, app *app, dbPath string) error {
	store, err := sqlite.NewStore(dbPath, app.clock)
	if err != nil {
		return fmt.Errorf("open diagnostics database: %w", err)
	}
	defer store.Close()

	snapshotID, err := store.ExportDiagnostics(cmd.Context(), app.engine.Diagnostics(), app.engine.DiagnosticsStats())
	if err != nil {
		return fmt.Errorf("export diagnostics: %w", err)
	}

	app.logger.Info("exported diagnostics snapshot", zap.String("snapshot", snapshotID), zap.String("db", dbPath))
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "exported diagnostics snapshot %s to %s\n", snapshotID, dbPath)
	return err
}
