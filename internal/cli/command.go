package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// usage returns the help text. Argument names are highlighted with p.
func usage(p palette) string {
	return heredoc.Docf(`
		%s - lists files and directories larger than a threshold in a directory.

		Usage:

			bifes <%s>
			bifes <%s> <%s> [%s]

		The %s can be -k, -m, -g, or -t for kilo, mega, giga, or terabytes (1024-based).
		If not specified, it is assumed to be -m. If specified, the %s must follow it.

		The %s is the minimum number of kilo, mega, giga, or terabytes a file or directory
		must have in order to be listed. If not specified, it is 1.

		The %s is the directory whose elements will be listed. The sizes of directories
		account for all their sub-directories, recursively. Symbolic links are never followed.
		If not specified, the current directory is used.

		Flags:
	`,
		p.accent("bifes"),
		p.accent("target"),
		p.accent("measure"), p.accent("threshold"), p.accent("target"),
		p.accent("measure"), p.accent("threshold"),
		p.accent("threshold"),
		p.accent("target"),
	) + FlagUsages()
}

// Command builds the root command. Flag parsing is left to Resolve so that
// the positional measure/threshold/target form is handled in one place.
func (c CLI) Command() *cobra.Command {
	return &cobra.Command{
		Use:                "bifes [-k|-m|-g|-t <threshold>] [target]",
		Short:              "List files and directories larger than a threshold",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}
}

// Execute runs the CLI with the process arguments.
// Any returned error has already been reported on stderr.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

func (c CLI) run(stdout, stderr io.Writer, args []string) error {
	options, err := Resolve(args)
	if err != nil {
		// --no-color is not known until resolution succeeds.
		p := newPalette(stderr, false)

		var rerr *ResolveError
		if errors.As(err, &rerr) {
			fmt.Fprintf(stderr, "%s: %s\n", p.alert(rerr.Title()), rerr.Msg)

			if rerr.Kind == KindNoArguments {
				fmt.Fprintln(stderr)
				fmt.Fprint(stderr, usage(p))
			}
		}

		return err
	}

	if options.Help {
		fmt.Fprint(stdout, usage(newPalette(stdout, options.NoColor)))

		return nil
	}

	if options.Version {
		fmt.Fprintln(stdout, c.version)

		return nil
	}

	if err := logic(options, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", newPalette(stderr, options.NoColor).alert("Error"), err)

		return err
	}

	return nil
}
