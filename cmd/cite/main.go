// Command cite prints the citation of a DOI using the same gateway the
// extension talks to: cached, rate limited and with classified errors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/app"
	"github.com/upb/paper-assistant-gateway/config"
	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/citation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "cite:", services.GetErrorMessage(err))
		os.Exit(1)
	}
}

type options struct {
	styles   []string
	metadata bool
	doi      string
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("cite", flag.ContinueOnError)
	style := fs.String("style", models.DefaultCitationStyle,
		"comma separated styles: "+strings.Join(models.CitationStyleIDs(), ", "))
	metadata := fs.Bool("metadata", false, "print the CSL metadata as JSON before the citations")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("usage: cite [-style apa,bibtex] [-metadata] <doi>")
	}

	opts := &options{metadata: *metadata, doi: fs.Arg(0)}
	for _, s := range strings.Split(*style, ",") {
		if s = strings.TrimSpace(s); s != "" {
			opts.styles = append(opts.styles, s)
		}
	}
	if len(opts.styles) == 0 {
		opts.styles = []string{models.DefaultCitationStyle}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}
	// Credentials are not needed to cite, keep the CLI off the database
	cfg.Database = config.DatabaseConfig{}

	deps, err := app.NewDependencies(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close(ctx) }()

	return cite(ctx, citation.NewSession(deps.Gateway), opts, out)
}

func cite(ctx context.Context, session *citation.Session, opts *options, out io.Writer) error {
	metadata, _, err := session.Load(ctx, opts.doi, opts.styles[0])
	if err != nil {
		return err
	}

	if opts.metadata {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metadata); err != nil {
			return err
		}
	}

	// The first style is memoised by Load
	for _, style := range opts.styles {
		text, err := session.Style(ctx, style)
		if err != nil {
			return err
		}
		if len(opts.styles) > 1 {
			if _, err := fmt.Fprintf(out, "[%s]\n", style); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, text); err != nil {
			return err
		}
	}
	return nil
}
