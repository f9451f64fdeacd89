package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/streamer"
)

func (a *app) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <input>",
		Short: "Write <prefix>.h and <prefix>.cpp for every struct of the input",
		Long: `Generate writes the four marshalling procedures of every struct.

Signatures go to <prefix>.h and bodies to <prefix>.cpp. The prefix defaults
to the input file name without its extension. Nothing is written when the
tree is malformed.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runGenerate,
	}
	cmd.Flags().StringP("output", "o", "", "Output file prefix (default: input name without extension)")
	cmd.Flags().Int("max-output-bytes", 0, "Abort when the generated text exceeds this size (0: unlimited)")
	_ = a.v.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = a.v.BindPFlag("max_output_bytes", cmd.Flags().Lookup("max-output-bytes"))
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	input := args[0]
	tree, loadDiags, err := a.loadTree(input)
	if err != nil {
		return err
	}

	prefix := a.cfg.Output
	if prefix == "" {
		prefix = strings.TrimSuffix(input, filepath.Ext(input))
	}

	gen := streamer.New(streamer.Options{
		Policy:         a.policy(),
		MaxOutputBytes: a.cfg.MaxOutputBytes,
	})

	var header, source bytes.Buffer
	report, err := gen.GenerateContext(cmd.Context(), tree, &header, &source)
	if err != nil {
		return err
	}

	headerPath, sourcePath := prefix+".h", prefix+".cpp"
	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.SinkWrite("output directory", err)
		}
	}
	if err := os.WriteFile(headerPath, header.Bytes(), 0o644); err != nil {
		return errors.SinkWrite("declaration", err)
	}
	if err := os.WriteFile(sourcePath, source.Bytes(), 0o644); err != nil {
		return errors.SinkWrite("implementation", err)
	}

	a.logger.Info("generated",
		zap.String("header", headerPath),
		zap.String("source", sourcePath),
		zap.Int("structs", report.Structs))

	printDiagnostics(cmd.ErrOrStderr(), append(loadDiags, report.Diagnostics...))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes) and %s (%d bytes): %d structs, %d modules, %d diagnostics\n",
		headerPath, report.HeaderBytes, sourcePath, report.SourceBytes,
		report.Structs, report.Modules, len(loadDiags)+len(report.Diagnostics))
	return nil
}

func printDiagnostics(w io.Writer, diags errors.Diagnostics) {
	for _, d := range diags {
		fmt.Fprintf(w, "warning: %s\n", d)
	}
}
