package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/pkg/ruledef"
	"github.com/solatis/strbounds/pkg/rules"
)

// tracePalette colors explain output.
type tracePalette struct {
	pass    *color.Color
	fail    *color.Color
	skipped *color.Color
	header  *color.Color
}

func newTracePalette() tracePalette {
	return tracePalette{
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		skipped: color.New(color.FgHiBlack),
		header:  color.New(color.Bold),
	}
}

func newExplainCmd(opts *options) *cobra.Command {
	var (
		rulesFile string
		matchAny  bool
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "explain CANDIDATE...",
		Short: "Show how a rule evaluates each candidate",
		Long: `Prints the evaluation trace of every candidate: each condition and group with
its result. Conditions skipped by short-circuit evaluation are marked as such.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			node, err := ruledef.LoadNode(rulesFile, opts.cfg.FilterAPI.MaxRuleDepth)
			if err != nil {
				return err
			}
			if matchAny && node.Kind() == rules.KindAll {
				node = rules.Any(node.Children()...)
			}

			p := newTracePalette()
			w := cmd.OutOrStdout()
			for _, candidate := range args {
				trace := rules.Explain(node, candidate)
				p.header.Fprintf(w, "%q: ", candidate)
				p.verdict(w, trace.Result)
				fmt.Fprintln(w)
				p.write(w, trace, 1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "rule definition file (.json, .yaml, .toml)")
	cmd.Flags().BoolVar(&matchAny, "any", false, "match when any top-level rule matches")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.MarkFlagRequired("rules")

	return cmd
}

func (p tracePalette) verdict(w io.Writer, matched bool) {
	if matched {
		p.pass.Fprint(w, "match")
	} else {
		p.fail.Fprint(w, "no match")
	}
}

// write prints t and its children, one node per line.
func (p tracePalette) write(w io.Writer, t rules.Trace, depth int) {
	indent := strings.Repeat("  ", depth)
	label := t.Node.Kind().String()
	if c, ok := t.Node.Condition(); ok {
		label = c.String()
	}

	switch {
	case !t.Evaluated:
		p.skipped.Fprintf(w, "%s- %s (skipped)\n", indent, label)
	case t.Result:
		p.pass.Fprintf(w, "%s+ %s\n", indent, label)
	default:
		p.fail.Fprintf(w, "%s- %s\n", indent, label)
	}

	for _, child := range t.Children {
		p.write(w, child, depth+1)
	}
}
