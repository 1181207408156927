package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/toyz/routeplan/internal/cli"
	"github.com/toyz/routeplan/internal/routes"
	"github.com/toyz/routeplan/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and performs one compilation, returning the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("routeplan", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		policyFlag   = flags.String("config", "", "Policy file (YAML) with targets, known middleware and parseable types")
		formatFlag   = flags.String("format", "json", "Routing table format: json or yaml")
		outputFlag   = flags.String("o", "", "Write the routing table to this file instead of stdout")
		targetsFlag  = flags.String("targets", "", "Comma separated target frameworks to check routes against (echo,gin,fiber)")
		packagesFlag = flags.Bool("packages", false, "Treat arguments as package patterns resolved by the go tool")
		verboseFlag  = flags.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag    = flags.Bool("quiet", false, "Only show errors and final results")
		helpFlag     = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: routeplan [options] <directory-paths...>\n\n")
		fmt.Fprintf(stderr, "Route Plan Compiler\n")
		fmt.Fprintf(stderr, "Scans Go files for routeplan:: annotations and compiles them into a routing table.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  directory-paths    One or more directories to scan for annotated Go files\n")
		fmt.Fprintf(stderr, "                     Supports Go-style patterns like './...' for recursive scanning\n")
		fmt.Fprintf(stderr, "\nRoute Constraints:\n")
		fmt.Fprintf(stderr, "  %s\n", strings.Join(routes.KnownConstraints(), ", "))
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  routeplan ./...                          # Compile everything, JSON to stdout\n")
		fmt.Fprintf(stderr, "  routeplan -format yaml -o routes.yaml ./internal/...\n")
		fmt.Fprintf(stderr, "  routeplan -targets echo,gin ./api        # Check routes against echo and gin\n")
		fmt.Fprintf(stderr, "  routeplan -packages ./...                # Resolve packages with the go tool\n")
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *helpFlag {
		flags.Usage()
		return 0
	}

	paths := flags.Args()
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "Error: At least one directory path is required\n\n")
		flags.Usage()
		return 1
	}

	var diag *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diag = utils.NewQuietDiagnostics()
	case *verboseFlag:
		diag = utils.NewVerboseDiagnostics()
	default:
		diag = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	// stdout carries the table when no output file is given
	diag.SetOutput(stderr, stderr)

	cfg := cli.Config{
		Paths:      paths,
		Packages:   *packagesFlag,
		PolicyFile: *policyFlag,
		Targets:    splitList(*targetsFlag),
		Format:     *formatFlag,
		Output:     *outputFlag,
		Verbose:    *verboseFlag,
	}

	diag.Header("compiling routes")
	if *verboseFlag {
		diag.Verbose("paths: %s", strings.Join(cfg.Paths, ", "))
		if len(cfg.Targets) > 0 {
			diag.Verbose("targets: %s", strings.Join(cfg.Targets, ", "))
		}
	}

	reporter := cli.NewDiagnosticReporter(*verboseFlag, stderr)
	generator := cli.NewGenerator(diag, reporter, stdout)

	err := generator.Run(ctx, cfg)
	if err != nil && !errors.Is(err, cli.ErrDiagnostics) {
		reporter.ReportError(err)
		return 1
	}

	summary := generator.GetSummary()
	diag.Summary("Compilation Complete", map[string]interface{}{
		"Handlers":   summary.Handlers,
		"Endpoints":  summary.Endpoints,
		"Middleware": summary.Middleware,
		"Parsers":    summary.Parsers,
		"Errors":     summary.Errors,
		"Warnings":   summary.Warnings,
	})

	if err != nil {
		diag.Error("%d error diagnostics, %d packages not loaded, see above", summary.Errors, summary.LoadFailures)
		return 1
	}
	if summary.Output != "" {
		diag.Success("Routing table written to %s", summary.Output)
	}
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
