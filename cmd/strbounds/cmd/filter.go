package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/ruledef"
	"github.com/solatis/strbounds/pkg/rules"
)

// maxLineLength bounds a single input line.
const maxLineLength = 1 << 20

type filterOptions struct {
	rulesFile string
	ruleSet   string
	client    string
	matchAny  bool
	invert    bool
	input     string
}

func newFilterCmd(opts *options) *cobra.Command {
	fo := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the input lines a rule selects",
		Long: `Reads lines from --input or stdin and prints those matching the rules.
Rules come from a JSON, YAML or TOML file (--rules) or a stored rule set (--rule-set).`,
		Example: `  ls | strbounds filter --rules images.yaml
  strbounds filter --rule-set images --input names.txt --invert`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, opts, fo)
		},
	}

	cmd.Flags().StringVar(&fo.rulesFile, "rules", "", "rule definition file (.json, .yaml, .toml)")
	cmd.Flags().StringVar(&fo.ruleSet, "rule-set", "", "stored rule set name")
	cmd.Flags().StringVar(&fo.client, "client", string(types.LocalClient), "client owning the rule set")
	cmd.Flags().BoolVar(&fo.matchAny, "any", false, "match when any top-level rule matches")
	cmd.Flags().BoolVar(&fo.invert, "invert", false, "print lines that do not match")
	cmd.Flags().StringVar(&fo.input, "input", "", "input file (default stdin)")
	cmd.MarkFlagsMutuallyExclusive("rules", "rule-set")
	cmd.MarkFlagsOneRequired("rules", "rule-set")

	return cmd
}

func runFilter(cmd *cobra.Command, opts *options, fo *filterOptions) error {
	compiled, kind, err := fo.load(cmd, opts)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, fo.input)
	if err != nil {
		return err
	}
	defer closeIn()

	match := rules.MatchAll
	if kind == types.RuleSetAny {
		match = rules.MatchAny
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		if match(compiled, line) != fo.invert {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return out.Flush()
}

// load returns the compiled rules and how their top-level items combine.
// --any overrides the kind of a stored rule set.
func (fo *filterOptions) load(cmd *cobra.Command, opts *options) (*rules.Compiled, types.RuleSetKind, error) {
	kind := types.RuleSetAll
	if fo.matchAny {
		kind = types.RuleSetAny
	}

	if fo.rulesFile != "" {
		node, err := ruledef.LoadNode(fo.rulesFile, opts.cfg.FilterAPI.MaxRuleDepth)
		if err != nil {
			return nil, "", err
		}
		compiled, err := rules.Compile(node, opts.cfg.FilterAPI.CompileOptions())
		if err != nil {
			return nil, "", err
		}
		return compiled, kind, nil
	}

	cat, closeDB, err := opts.openCatalog(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	defer closeDB()

	loaded, err := cat.CompiledByName(cmd.Context(), types.ClientID(fo.client), fo.ruleSet)
	if err != nil {
		return nil, "", err
	}
	if !cmd.Flags().Changed("any") {
		kind = loaded.RuleSet.Kind
	}
	return loaded.Rules, kind, nil
}

// openInput opens path, or stdin when path is empty. A terminal on stdin
// is rejected: filter reads until end of input.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input: %w", err)
		}
		return f, func() { f.Close() }, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil, nil, fmt.Errorf("no input: pass --input or pipe lines on stdin")
	}
	return in, func() {}, nil
}
