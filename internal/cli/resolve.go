package cli

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/idelchi/bifes/internal/bifes"
)

// Options is the resolved command line.
type Options struct {
	bifes.Config
	// Output is the output format, text or json.
	Output string
	// Sorted reports entries largest first once the walk is done, instead of as they are found.
	Sorted bool
	// Summary prints scan statistics to the error stream.
	Summary bool
	// NoColor disables colored diagnostics.
	NoColor bool
	// Debug enables debug logging to the error stream.
	Debug bool
	// Help indicates whether to show usage and exit.
	Help bool
	// Version indicates whether to show version and exit.
	Version bool
}

// ErrorKind classifies command line errors.
type ErrorKind string

const (
	// KindNoArguments means the program was called without arguments.
	KindNoArguments ErrorKind = "no-arguments"
	// KindInvalidUnit means an unknown flag was given, or more than one measure.
	KindInvalidUnit ErrorKind = "invalid-unit"
	// KindMissingThreshold means a flag was given without its value.
	KindMissingThreshold ErrorKind = "missing-threshold"
	// KindInvalidThreshold means the threshold is not a number or does not fit in 64 bits.
	KindInvalidThreshold ErrorKind = "invalid-threshold"
	// KindTooManyArguments means more than one directory was given.
	KindTooManyArguments ErrorKind = "too-many-arguments"
	// KindInvalidOutput means the output format is not supported.
	KindInvalidOutput ErrorKind = "invalid-output"
)

// ResolveError is returned by Resolve for any invalid command line.
type ResolveError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Title is the label shown in front of the message.
func (e *ResolveError) Title() string {
	switch e.Kind {
	case KindNoArguments:
		return "Missing arguments"
	case KindInvalidUnit:
		return "Invalid measure"
	case KindMissingThreshold, KindInvalidThreshold:
		return "Invalid threshold"
	case KindTooManyArguments:
		return "Invalid target"
	case KindInvalidOutput:
		return "Invalid output"
	default:
		return "Invalid arguments"
	}
}

// unit is a threshold measure selected by a flag.
type unit struct {
	short string
	long  string
	size  uint64
}

//nolint:gochecknoglobals // Config constant
var units = []unit{
	{"k", "kilo", humanize.KiByte},
	{"m", "mega", humanize.MiByte},
	{"g", "giga", humanize.GiByte},
	{"t", "tera", humanize.TiByte},
}

// allowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"text", "json"}

// thresholdFlag is a measure flag whose value is the threshold in that measure.
type thresholdFlag struct {
	unit   unit
	parser *parser
	value  string
}

func (f *thresholdFlag) String() string { return f.value }

func (f *thresholdFlag) Type() string { return "n" }

// Set records the threshold. pflag flattens errors returned from here into a string,
// so the typed error is kept on the parser as well.
func (f *thresholdFlag) Set(s string) error {
	f.value = s

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		f.parser.err = &ResolveError{
			Kind: KindInvalidThreshold,
			Msg:  fmt.Sprintf("%q is not a non-negative integer", s),
			Err:  err,
		}

		return f.parser.err
	}

	if n > math.MaxUint64/f.unit.size {
		f.parser.err = &ResolveError{
			Kind: KindInvalidThreshold,
			Msg:  fmt.Sprintf("%d%s does not fit in 64 bits", n, strings.ToUpper(f.unit.short)),
		}

		return f.parser.err
	}

	f.parser.measures = append(f.parser.measures, f.unit)
	f.parser.threshold = n * f.unit.size

	return nil
}

// parser holds the flag set and the state collected while parsing it.
type parser struct {
	flags     *pflag.FlagSet
	options   Options
	size      string
	measures  []unit
	threshold uint64
	err       *ResolveError
}

func newParser() *parser {
	p := &parser{}
	p.flags = pflag.NewFlagSet("bifes", pflag.ContinueOnError)
	p.flags.SetOutput(io.Discard)
	p.flags.SortFlags = false

	for _, u := range units {
		p.flags.VarP(
			&thresholdFlag{unit: u, parser: p},
			u.long,
			u.short,
			fmt.Sprintf("Threshold in %sbytes (1 %s = %d bytes)", u.long, strings.ToUpper(u.short)+"B", u.size),
		)
	}

	p.flags.StringVar(&p.size, "size", "", "Threshold as a human readable size (e.g., 1.5GiB); cannot be combined with a measure")
	p.flags.StringVarP(&p.options.Output, "output", "o", "text", "Output format: text or json")
	p.flags.BoolVar(&p.options.Sorted, "sort", false, "List entries largest first once the scan is complete")
	p.flags.BoolVarP(&p.options.Summary, "summary", "s", false, "Print scan statistics to stderr")
	p.flags.BoolVar(&p.options.NoColor, "no-color", false, "Disable colored diagnostics")
	p.flags.BoolVar(&p.options.Debug, "debug", false, "Enable debug output")
	p.flags.BoolVarP(&p.options.Help, "help", "h", false, "Show usage and exit")
	p.flags.BoolVarP(&p.options.Version, "version", "v", false, "Show version and exit")

	return p
}

// Resolve turns command line arguments (without the program name) into Options.
// It never prints or exits; every failure is a *ResolveError.
func Resolve(args []string) (Options, error) {
	if len(args) == 0 {
		return Options{}, &ResolveError{Kind: KindNoArguments, Msg: "a target directory or a measure and threshold is required"}
	}

	// pflag treats a lone "-" as a positional argument; as the first argument it is a measure with no unit.
	if args[0] == "-" {
		return Options{}, &ResolveError{Kind: KindInvalidUnit, Msg: `"-" must be -k, -m, -g, or -t`}
	}

	p := newParser()

	if err := p.flags.Parse(args); err != nil {
		return Options{}, p.classify(err)
	}

	if p.options.Help || p.options.Version {
		return p.options, nil
	}

	threshold, err := p.resolveThreshold()
	if err != nil {
		return Options{}, err
	}

	p.options.Threshold = threshold

	switch rest := p.flags.Args(); len(rest) {
	case 0:
		p.options.Root = "."
	case 1:
		p.options.Root = rest[0]
	default:
		return Options{}, &ResolveError{
			Kind: KindTooManyArguments,
			Msg:  fmt.Sprintf("expected at most one directory, got %d: %s", len(rest), strings.Join(rest, " ")),
		}
	}

	p.options.Output = strings.ToLower(p.options.Output)
	if !slices.Contains(allowedOutputs, p.options.Output) {
		return Options{}, &ResolveError{
			Kind: KindInvalidOutput,
			Msg:  fmt.Sprintf("invalid output format %q: must be one of %v", p.options.Output, allowedOutputs),
		}
	}

	return p.options, nil
}

// classify maps a pflag parse error to a ResolveError.
func (p *parser) classify(err error) *ResolveError {
	if p.err != nil {
		return p.err
	}

	// pflag errors are untyped; the missing value case is recognized by its message.
	if strings.Contains(err.Error(), "needs an argument") {
		return &ResolveError{Kind: KindMissingThreshold, Msg: err.Error(), Err: err}
	}

	return &ResolveError{
		Kind: KindInvalidUnit,
		Msg:  fmt.Sprintf("%v; must be -k, -m, -g, or -t", err),
		Err:  err,
	}
}

func (p *parser) resolveThreshold() (uint64, error) {
	sizeSet := p.flags.Changed("size")

	switch {
	case len(p.measures) > 1:
		return 0, &ResolveError{Kind: KindInvalidUnit, Msg: "only one of -k, -m, -g, or -t may be given"}
	case len(p.measures) == 1 && sizeSet:
		return 0, &ResolveError{Kind: KindInvalidUnit, Msg: "--size cannot be combined with -k, -m, -g, or -t"}
	case len(p.measures) == 1:
		return p.threshold, nil
	case sizeSet:
		size, err := humanize.ParseBytes(p.size)
		if err != nil {
			return 0, &ResolveError{Kind: KindInvalidThreshold, Msg: fmt.Sprintf("invalid size %q", p.size), Err: err}
		}

		return size, nil
	default:
		return bifes.DefaultThreshold, nil
	}
}

// FlagUsages returns the formatted flag help.
func FlagUsages() string {
	return newParser().flags.FlagUsages()
}
