package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/ingest"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/logging"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/render"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type options struct {
	file        string
	capacity    string
	format      string
	concurrency int
	logLevel    string
}

func main() {
	app := kingpin.New("deckleplan", "Batch an order sheet by deckle and print the plan")
	opts := options{}
	app.Arg("file", "Order sheet (.xlsx or .csv)").Required().ExistingFileVar(&opts.file)
	app.Flag("capacity", "Machine deckle capacity").Default(planning.DefaultCapacity().String()).StringVar(&opts.capacity)
	app.Flag("format", "Output format").Short('f').Default(formatTable).EnumVar(&opts.format, formatTable, formatJSON)
	app.Flag("concurrency", "Groups allocated in parallel (0 uses GOMAXPROCS)").Default("0").IntVar(&opts.concurrency)
	app.Flag("log-level", "Log level written to stderr").Default("warn").StringVar(&opts.logLevel)

	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		app.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Debug("planning failed", zap.Error(err))
		app.Fatalf("%v", err)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logger *zap.Logger) error {
	capacity, err := decimal.NewFromString(opts.capacity)
	if err != nil {
		return fmt.Errorf("invalid capacity %q", opts.capacity)
	}
	if err := batching.ValidateCapacity(capacity); err != nil {
		return err
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open order sheet: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	source := filepath.Base(opts.file)
	orders, err := ingest.Parse(source, f)
	if err != nil {
		if rows := ingest.RowErrors(err); len(rows) > 0 {
			for _, re := range rows {
				_, _ = fmt.Fprintln(os.Stderr, re.Error())
			}
			return fmt.Errorf("%s: %d invalid rows", source, len(rows))
		}
		return fmt.Errorf("%s: %w", source, err)
	}

	planner := planning.NewPlanner(batching.New(), logger, planning.WithConcurrency(opts.concurrency))
	plan, err := planner.Plan(ctx, source, orders, capacity)
	if err != nil {
		return err
	}

	if opts.format == formatJSON {
		return render.JSON(out, plan)
	}
	return render.Terminal(out, plan)
}
