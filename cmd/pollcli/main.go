// Command pollcli fetches the poll sheet once and prints or exports a view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pollscope/internal/config"
	"pollscope/internal/exporter"
	"pollscope/internal/fetcher"
	"pollscope/internal/infrastructure"
	"pollscope/internal/services"
	"pollscope/internal/validation"
	api "pollscope/pkg/contracts/api/v1"
)

type options struct {
	view       string
	source     string
	candidates []string
	out        string
	lang       string
	envFile    string
	configFile string
	url        string
}

var errUsage = errors.New("usage error")

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "pollcli:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pollcli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	var candidates string
	fs.StringVar(&opts.view, "view", "sources", "ranking | evolution | comparison | sources")
	fs.StringVar(&opts.source, "source", "", "pollster for ranking and evolution")
	fs.StringVar(&candidates, "candidates", "", "comma separated candidates (default: top candidates)")
	fs.StringVar(&opts.out, "out", "", "write the view to a .csv or .xlsx file instead of printing it")
	fs.StringVar(&opts.lang, "lang", "es", "number format: es | en")
	fs.StringVar(&opts.envFile, "env", ".env", "dotenv file loaded before the environment is read")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file")
	fs.StringVar(&opts.url, "url", "", "override the source URL")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.candidates = api.SplitList(candidates)

	switch opts.view {
	case "ranking", "evolution":
		if opts.source == "" {
			return nil, fmt.Errorf("%w: -source is required for -view %s", errUsage, opts.view)
		}
	case "comparison", "sources":
	default:
		return nil, fmt.Errorf("%w: unknown view %q", errUsage, opts.view)
	}
	if opts.out != "" && opts.view != "ranking" && opts.view != "comparison" {
		return nil, fmt.Errorf("%w: only ranking and comparison can be exported", errUsage)
	}
	if opts.lang != "es" && opts.lang != "en" {
		return nil, fmt.Errorf("%w: unknown language %q", errUsage, opts.lang)
	}
	return opts, nil
}

func loadConfig(opts *options) (*config.Config, error) {
	if err := config.LoadEnvFiles(opts.envFile); err != nil {
		return nil, err
	}
	load := config.Load
	if opts.configFile != "" {
		load = func() (*config.Config, error) { return config.LoadFrom(opts.configFile) }
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if opts.url != "" {
		cfg.Source.URL = opts.url
		if cfg.Source.Format == config.FormatSheets {
			cfg.Source.Format = config.FormatCSV
		}
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := infrastructure.NewLogger(cfg.Logging, stderr).With(slog.String("component", "pollcli"))

	f, err := fetcher.New(cfg.Source, nil)
	if err != nil {
		return err
	}
	svc := services.NewPollService(f, logger,
		services.WithOrigin(cfg.Source.Origin()),
		services.WithRefreshTimeout(cfg.Source.Timeout),
	)

	snap, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	if opts.out != "" {
		return export(svc, opts, validation.NewFileValidator(logger))
	}

	p := newPrinter(opts.lang)
	updated, rows := "Actualizado", "filas"
	if opts.lang == "en" {
		updated, rows = "Updated", "rows"
	}
	p.Fprintf(stdout, "%s %s · %d %s · %s\n", updated, humanize.Time(snap.LastUpdated), snap.RowsAccepted, rows, snap.Origin)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	switch opts.view {
	case "sources":
		err = printSources(tw, p, svc)
	case "ranking":
		err = printRanking(tw, p, svc, opts.source)
	case "evolution":
		err = printEvolution(tw, p, svc, opts.source, opts.candidates)
	case "comparison":
		err = printComparison(tw, p, svc, opts.candidates)
	}
	if err != nil {
		return err
	}
	return tw.Flush()
}

func newPrinter(lang string) *message.Printer {
	if lang == "en" {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(language.Spanish)
}

func export(svc *services.PollService, opts *options, v *validation.FileValidator) error {
	format, err := v.ValidateExportPath(opts.out)
	if err != nil {
		return err
	}

	var table *exporter.Table
	if opts.view == "ranking" {
		view, err := svc.Ranking(opts.source)
		if err != nil {
			return err
		}
		table = exporter.RankingTable(view.Source, view.Entries)
	} else {
		view, err := svc.Comparison(opts.candidates)
		if err != nil {
			return err
		}
		names := make([]string, len(view.Sources))
		for i, s := range view.Sources {
			names[i] = s.Name
		}
		table = exporter.ComparisonTable(names, view.Rows)
	}

	file, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	if err := exporter.Write(file, format, table); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func printSources(w io.Writer, p *message.Printer, svc *services.PollService) error {
	view, err := svc.Sources()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ENCUESTADORA\tPERIODOS\tCANDIDATOS\tÚLTIMO PERIODO")
	for _, s := range view.Sources {
		p.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Name, s.PeriodCount, s.CandidateCount, s.LastPeriod)
	}
	return nil
}

func printRanking(w io.Writer, p *message.Printer, svc *services.PollService, source string) error {
	view, err := svc.Ranking(source)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s · %s\n", view.Source, view.LastPeriod)
	fmt.Fprintln(w, "#\tCANDIDATO\tPARTIDO\tVALOR\tTENDENCIA")
	for _, e := range view.Entries {
		p.Fprintf(w, "%d\t%s\t%s\t%.1f\t%+.1f\n", e.Rank, e.Candidate, e.Party, e.LastValue, e.Trend)
	}
	return nil
}

func printEvolution(w io.Writer, p *message.Printer, svc *services.PollService, source string, candidates []string) error {
	view, err := svc.Evolution(source, candidates)
	if err != nil {
		return err
	}

	header := []string{"PERIODO"}
	for _, c := range view.Candidates {
		header = append(header, strings.ToUpper(c.ShortName))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, point := range view.Points {
		cells := []string{point.Period}
		for _, c := range view.Candidates {
			if v, ok := point.Values[c.Name]; ok {
				cells = append(cells, p.Sprintf("%.1f", v))
			} else {
				cells = append(cells, exporter.Absent)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return nil
}

func printComparison(w io.Writer, p *message.Printer, svc *services.PollService, candidates []string) error {
	view, err := svc.Comparison(candidates)
	if err != nil {
		return err
	}

	header := []string{"CANDIDATO"}
	for _, s := range view.Sources {
		header = append(header, s.Name)
	}
	header = append(header, "PROMEDIO")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range view.Rows {
		cells := []string{row.Candidate}
		for _, s := range view.Sources {
			if v := row.PerSource[s.Name]; v != nil {
				cells = append(cells, p.Sprintf("%.1f", *v))
			} else {
				cells = append(cells, exporter.Absent)
			}
		}
		if row.Present > 0 {
			cells = append(cells, p.Sprintf("%.1f", row.Mean))
		} else {
			cells = append(cells, exporter.Absent)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return nil
}
