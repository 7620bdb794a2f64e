package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goproblem"
	"github.com/reoring/goproblem/formatters"
	"github.com/reoring/goproblem/xmlformat"
)

const (
	formatJSON = "json"
	formatXML  = "xml"
	formatYAML = "yaml"

	kindProblem    = "problem"
	kindValidation = "validation"
)

type convertOptions struct {
	from   string
	to     string
	kind   string
	indent bool
}

func newConvertCmd(global *globalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a problem document between formats",
		Long: `Convert a problem document between JSON, XML and YAML.

The input is read from the file argument, or stdin when omitted. The
compatibility version selects the JSON shape and the XML wrapper registry.

Example:
  problemfmt convert --from json --to xml --kind validation problem.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			set, log, err := buildSet(global, opts.indent)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return runConvert(in, cmd.OutOrStdout(), opts, set, log)
		},
	}

	cmd.Flags().StringVarP(&opts.from, "from", "f", formatJSON, "Input format: json or xml")
	cmd.Flags().StringVarP(&opts.to, "to", "t", formatXML, "Output format: json, xml or yaml")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", kindProblem, "Document kind: problem or validation")
	cmd.Flags().BoolVarP(&opts.indent, "indent", "i", false, "Indent output")

	return cmd
}

func runConvert(in io.Reader, out io.Writer, opts *convertOptions, set *formatters.Set, log *zap.Logger) error {
	switch opts.kind {
	case kindProblem:
		return convertDocument(in, out, opts, set, log, set.JSON.ReadProblem)
	case kindValidation:
		return convertDocument(in, out, opts, set, log, set.JSON.ReadValidationProblem)
	default:
		return fmt.Errorf("unknown kind %q", opts.kind)
	}
}

func convertDocument[T any](in io.Reader, out io.Writer, opts *convertOptions, set *formatters.Set, log *zap.Logger, readJSON func(io.Reader) (T, error)) error {
	var (
		doc T
		err error
	)
	switch opts.from {
	case formatJSON:
		doc, err = readJSON(in)
	case formatXML:
		doc, err = xmlformat.ReadValue[T](set.XML, in)
	default:
		return fmt.Errorf("unknown input format %q", opts.from)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.from, err)
	}
	if isNilDocument(doc) {
		return fmt.Errorf("%s input holds no problem document", opts.from)
	}
	log.Debug("Document read", zap.String("format", opts.from), zap.String("kind", opts.kind))

	switch opts.to {
	case formatJSON:
		err = set.JSON.Write(out, doc)
	case formatXML:
		err = xmlformat.WriteValue(set.XML, out, doc)
	case formatYAML:
		err = writeYAML(out, doc)
	default:
		return fmt.Errorf("unknown output format %q", opts.to)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.to, err)
	}
	_, err = io.WriteString(out, "\n")
	return err
}

func isNilDocument(v any) bool {
	switch d := v.(type) {
	case *goproblem.Problem:
		return d == nil
	case *goproblem.ValidationProblem:
		return d == nil
	}
	return v == nil
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
