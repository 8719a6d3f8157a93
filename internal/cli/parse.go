package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

type parseResult struct {
	Help    bool
	Version bool
	Quiet   int
	Verbose int
	Args    []string
}

// parser adapts the option-parsing collaborator to a fixed grammar:
// --help/-h (plus -?), --version/-V, and the repeatable --quiet/-q and
// --verbose/-v counters. Unknown flags are rejected.
type parser struct {
	name    string
	version string
}

func newParser(name, version string) *parser {
	return &parser{name: name, version: version}
}

// parse runs the tokens through the grammar and fires done exactly once
// with (error, result, rendered output text). Rendered text is help or
// version text on success, usage plus the failure message on error.
func (p *parser) parse(tokens []string, done func(err error, res *parseResult, rendered string)) {
	var fired bool
	fire := func(err error, res *parseResult, rendered string) {
		if fired {
			return
		}
		fired = true
		done(err, res, rendered)
	}

	res := &parseResult{}
	var buf bytes.Buffer

	cmd := &cobra.Command{
		Use:           p.name + " [flags] <file>",
		Short:         "Check files for trailing whitespace and missing final newlines",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			res.Args = args
			return nil
		},
	}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().BoolVarP(&res.Version, "version", "V", false, "Print the version and exit")
	cmd.Flags().CountVarP(&res.Quiet, "quiet", "q", "Decrease output detail (repeatable)")
	cmd.Flags().CountVarP(&res.Verbose, "verbose", "v", "Increase output detail (repeatable)")

	// A nil argument slice would make cobra fall back to the ambient
	// os.Args; the parser only ever operates on the tokens it was
	// handed, under the name it was configured with.
	normalized := make([]string, 0, len(tokens))
	terminated := false
	for _, tok := range tokens {
		if tok == "--" {
			terminated = true
		}
		// -? is accepted as a help alias; it has no single-shorthand
		// representation in the flag set.
		if tok == "-?" && !terminated {
			tok = "--help"
		}
		normalized = append(normalized, tok)
	}
	cmd.SetArgs(normalized)

	if err := cmd.Execute(); err != nil {
		fire(err, nil, cmd.UsageString()+"\n"+err.Error()+"\n")
		return
	}

	if f := cmd.Flags().Lookup("help"); f != nil && f.Changed {
		res.Help = true
	}
	if res.Version && !res.Help {
		fmt.Fprintf(&buf, "%s %s\n", p.name, p.version)
	}
	fire(nil, res, buf.String())
}
