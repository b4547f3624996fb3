package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ducttapeprodigy/boilerplate/internal/config"
	"github.com/ducttapeprodigy/boilerplate/internal/fixture"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/worker"
	"github.com/paularlott/cli"
	"golang.org/x/term"
)

// Stdout is the output name that writes the document to standard output
const Stdout = "-"

// previewRecords is how many records the terminal preview shows
const previewRecords = 3

// Options for one generate run
type Options struct {
	Params     fixture.Params
	Output     string
	Format     string
	Sets       int
	Print      bool
	MaxRecords int
}

// Result describes one written fixture set
type Result struct {
	Path    string
	Records int
}

// Run generates opts.Sets forests and writes them out. Interactive enables
// the hierarchy preview on out. On error no fixture files are left behind.
func Run(ctx context.Context, opts Options, out io.Writer, interactive bool) ([]Result, error) {
	if opts.Sets < 1 {
		return nil, fmt.Errorf("%w: sets must be at least 1, got %d", fixture.ErrInvalidArgument, opts.Sets)
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Output == "" {
		opts.Output = config.DefaultFixtureOutput
	}
	if opts.Output == Stdout && opts.Sets > 1 {
		return nil, fmt.Errorf("%w: cannot write %d sets to stdout", fixture.ErrInvalidArgument, opts.Sets)
	}

	format := fixture.FormatFromPath(opts.Output)
	if opts.Format != "" {
		f, err := fixture.ParseFormat(opts.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	if opts.Output == Stdout {
		records, err := opts.Params.Generate(fixture.WithMaxRecords(opts.MaxRecords))
		if err != nil {
			return nil, err
		}
		if err := fixture.Encode(out, records, format); err != nil {
			return nil, err
		}
		return []Result{{Path: Stdout, Records: len(records)}}, nil
	}

	if opts.Sets == 1 {
		records, err := opts.Params.Generate(fixture.WithMaxRecords(opts.MaxRecords))
		if err != nil {
			return nil, err
		}
		if interactive || opts.Print {
			if err := preview(out, records); err != nil {
				return nil, err
			}
		}
		if err := fixture.SaveFile(opts.Output, records, format); err != nil {
			return nil, err
		}
		return []Result{{Path: opts.Output, Records: len(records)}}, nil
	}

	return runSets(ctx, opts, format)
}

// runSets writes each set to its own suffixed file. A seeded run gives set i
// the seed seed+i, so every file is reproducible on its own. If any set
// fails, the sets already written are removed.
func runSets(ctx context.Context, opts Options, format fixture.Format) ([]Result, error) {
	pool := worker.NewWorkerPool(ctx, min(opts.Sets, runtime.NumCPU()))
	pool.Start()
	defer pool.Stop()

	results := make([]Result, opts.Sets)
	done := make(chan error, opts.Sets)

	for i := range opts.Sets {
		params := opts.Params
		if params.Seed != nil {
			params = params.WithSeed(*params.Seed + int64(i))
		}
		path := SetPath(opts.Output, i+1)

		err := pool.Submit(worker.Job{
			ID: path,
			Handler: func(ctx context.Context) error {
				records, err := params.Generate(fixture.WithMaxRecords(opts.MaxRecords))
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fixture.SaveFile(path, records, format); err != nil {
					return err
				}
				results[i] = Result{Path: path, Records: len(records)}
				log.Debug("Fixture set written", "path", path, "records", len(records))
				return nil
			},
			Result: done,
		})
		if err != nil {
			return nil, err
		}
	}

	var errs []error
	for range opts.Sets {
		if err := <-done; err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		removeWritten(results)
		return nil, err
	}
	return results, nil
}

// removeWritten deletes the sets that did get written before a failure
func removeWritten(results []Result) {
	for _, r := range results {
		if r.Path == "" {
			continue
		}
		if err := os.Remove(r.Path); err != nil {
			log.Warn("Failed to remove partial fixture set", "path", r.Path, "error", err)
		}
	}
}

// SetPath numbers a file name for multi-set runs: data.json becomes
// data_2.json
func SetPath(path string, n int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + strconv.Itoa(n) + ext
}

func preview(w io.Writer, records []fixture.Record) error {
	fmt.Fprintf(w, "Generated %d records\n\n", len(records))
	fmt.Fprintf(w, "First %d records:\n", previewRecords)
	for i := range records[:min(previewRecords, len(records))] {
		fmt.Fprintf(w, "Record %d:\n", i+1)
		if err := fixture.PrintRecord(w, &records[i]); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return fixture.PrintHierarchy(w, records)
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "generate",
		Usage:       "Generate hierarchical fixture data",
		Description: "Generate a synthetic datacenter, sec_zone, network and host forest and write it as JSON or YAML",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:         "roots",
				Usage:        "Number of root datacenters",
				DefaultValue: 10,
			},
			&cli.IntFlag{
				Name:         "depth",
				Usage:        "Maximum tree depth in levels (1 = roots only)",
				DefaultValue: 5,
			},
			&cli.IntFlag{
				Name:         "children",
				Usage:        "Maximum children per node",
				DefaultValue: 5,
			},
			&cli.IntFlag{
				Name:         "seed",
				Usage:        "Random seed for reproducible output (0 = unseeded)",
				DefaultValue: 42,
			},
			&cli.StringFlag{
				Name:         "output",
				Usage:        "Output file, or - for stdout",
				DefaultValue: config.DefaultFixtureOutput,
				Aliases:      []string{"o"},
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json or yaml (default from the file extension)",
			},
			&cli.IntFlag{
				Name:         "sets",
				Usage:        "Number of independent fixture files to write",
				DefaultValue: 1,
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the hierarchy preview even when stdout is not a terminal",
			},
			&cli.IntFlag{
				Name:         "max-records",
				Usage:        "Maximum records per set (0 = unlimited)",
				DefaultValue: config.DefaultMaxRecords,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			params := fixture.Params{
				Roots:    cmd.GetInt("roots"),
				Depth:    cmd.GetInt("depth"),
				Children: cmd.GetInt("children"),
			}
			if seed := cmd.GetInt("seed"); seed != 0 {
				params = params.WithSeed(int64(seed))
			}

			opts := Options{
				Params:     params,
				Output:     cmd.GetString("output"),
				Format:     cmd.GetString("format"),
				Sets:       cmd.GetInt("sets"),
				Print:      cmd.GetBool("print"),
				MaxRecords: cmd.GetInt("max-records"),
			}

			start := time.Now()
			results, err := Run(ctx, opts, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
			if err != nil {
				return err
			}

			total := 0
			for _, r := range results {
				total += r.Records
			}
			log.Info("Fixture generation complete", "sets", len(results), "records", total, "duration", time.Since(start))
			if opts.Output != Stdout {
				for _, r := range results {
					fmt.Fprintf(os.Stderr, "%d records saved to '%s'\n", r.Records, r.Path)
				}
			}
			return nil
		},
	}
}
