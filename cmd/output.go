package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	diagnosticsadapter "github.com/bnema/arcprompt/internal/adapters/render/diagnostics"
	"github.com/bnema/arcprompt/internal/domain"
)

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeHeaderOutput(w io.Writer, result domain.PromptHeaderResult, asJSON bool) error {
	if asJSON {
		return writeJSON(w, result)
	}

	_, err := io.WriteString(w, result.Header)
	return err
}

func writeDiagnosticsReport(w io.Writer, app *app) error {
	rendered, err := app.diagnosticsReport(
		app.engine.Diagnostics(),
		app.engine.DiagnosticsStats(),
		diagnosticsadapter.RenderOptions{Now: app.now()},
	)
	if err != nil {
		return fmt.Errorf("render diagnostics: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}
