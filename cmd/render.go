// The render and normalize commands run the gateway pipeline offline on a
// designer payload file: read → normalize → render → write.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/core/normalize"
	"github.com/gaurav-prasanna/reportgate/core/output"
	"github.com/gaurav-prasanna/reportgate/core/render"
)

// Render flag variables.
var (
	flagFormat    string
	flagOutputDir string
	flagName      string
)

// payload is the designer request body, as saved to a file.
type payload struct {
	Report       core.ReportDefinition `json:"report"`
	Data         core.ReportData       `json:"data"`
	OutputFormat string                `json:"outputFormat"`
}

var renderCmd = &cobra.Command{
	Use:   "render <payload.json>",
	Short: "Render a saved designer payload to a file",
	Long: `Render normalizes the rich-text elements of a saved designer payload
({"report": ..., "data": ..., "outputFormat": ...}) and writes the rendered
report to the output directory. Use "-" to read the payload from stdin.

Examples:
  reportgate render invoice.json
  reportgate render invoice.json --format xlsx --output_dir ./out
  reportgate render invoice.json --name invoice-42`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <payload.json>",
	Short: "Print the normalized report definition of a saved payload",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func init() {
	rootCmd.AddCommand(renderCmd, normalizeCmd)

	renderCmd.Flags().StringVar(&flagFormat, "format", "", "Output format: pdf or xlsx (default: the payload's outputFormat, else pdf)")
	renderCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	renderCmd.Flags().StringVar(&flagName, "name", "", "Output file name without extension (default: report_<timestamp>)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	p, err := readPayload(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	format := p.OutputFormat
	if flagFormat != "" {
		format = flagFormat
	}
	kind := core.ParseOutputKind(format)

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	def, warnings := normalize.New(log).Normalize(p.Report)
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ Warning: %v\n", w)
	}

	data, err := newGateway(cfg, log).Render(cmd.Context(), def, p.Data, kind)
	if err != nil {
		return describeRenderError(err)
	}

	path, err := writer.Write(flagName, kind, data, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	p, err := readPayload(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	def, warnings := normalize.New(newLogger(cfg)).Normalize(p.Report)
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ Warning: %v\n", w)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(def)
}

// readPayload loads a payload from path, or from stdin when path is "-".
func readPayload(path string, stdin io.Reader) (*payload, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening payload: %w", err)
		}
		defer f.Close()
		r = f
	}

	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if len(p.Report) == 0 {
		return nil, errors.New("payload has no report definition")
	}
	if p.Data == nil {
		p.Data = core.ReportData{}
	}
	return &p, nil
}

// describeRenderError lists validation problems one per line.
func describeRenderError(err error) error {
	var verr *render.ValidationError
	if !errors.As(err, &verr) {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("render: %w", err)
	}
	msg := "report validation failed:"
	for _, fe := range verr.Errors {
		msg += fmt.Sprintf("\n  - %s.%s: %s", fe.ObjectID, fe.Field, fe.MsgKey)
		if fe.Info != "" {
			msg += " (" + fe.Info + ")"
		}
	}
	return errors.New(msg)
}
