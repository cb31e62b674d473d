package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"infovis/columnar"
	"infovis/config"
	"infovis/logging"
	"infovis/pagepool"
)

type statsOptions struct {
	rows        int
	sparseEvery int
	bins        int
	monitor     time.Duration
}

func newStatsCmd(configPath *string) *cobra.Command {
	opts := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fill paged columns larger than the pool and report paging activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd.OutOrStdout(), *configPath, opts)
		},
	}
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "rows per column (default: as many as the pool holds)")
	cmd.Flags().IntVar(&opts.sparseEvery, "sparse-every", 1000, "define every n-th row of the sparse column")
	cmd.Flags().IntVar(&opts.bins, "bins", 10, "histogram bins over the int column")
	cmd.Flags().DurationVar(&opts.monitor, "monitor", 0, "log pool activity at this interval")
	return cmd
}

func runStats(ctx context.Context, out io.Writer, configPath string, opts *statsOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Logging()); err != nil {
		return err
	}
	defer logging.Sync()
	log := logging.Get()

	// the pool logs to the global logger
	pool, err := cfg.NewPool(nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(pagepool.NewCollector(pool, prometheus.Labels{"pool": "colstore"}))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.monitor > 0 {
		go pool.Monitor(ctx, opts.monitor)
	}

	// two columns of this many rows need twice the pool
	rows := opts.rows
	if rows <= 0 {
		rows = pool.MaxPages() * pagepool.ChunkSize
	}

	start := time.Now()
	ints := columnar.NewPagedIntColumn("ints", rows, pool)
	defer ints.Close()
	floats := columnar.NewPagedFloatColumn("floats", rows, pool)
	defer floats.Close()
	if err := fill(ints, floats, rows); err != nil {
		return fmt.Errorf("fill columns: %w", err)
	}
	filled := time.Since(start)

	bad, err := verify(ints, floats)
	if err != nil {
		return fmt.Errorf("verify columns: %w", err)
	}

	total, err := histogramTotal(ints, opts.bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}

	sparse := columnar.NewIntSparseColumn("sparse")
	mutating := columnar.NewMutatingIntSparseColumn("mutating", cfg.Heuristic())
	if every := opts.sparseEvery; every > 0 {
		for row := 0; row < rows; row += every {
			sparse.SetExtend(row, int32(row))
			mutating.SetExtend(row, int32(row))
		}
	}

	log.Info("columns filled",
		zap.Int("rows", rows),
		zap.Int("chunks", ints.Chunks()+floats.Chunks()),
		zap.Duration("elapsed", filled),
	)

	st := pool.Stats()
	fmt.Fprintf(out, "%-16s %d\n", "rows", rows)
	fmt.Fprintf(out, "%-16s %d\n", "chunks", ints.Chunks()+floats.Chunks())
	fmt.Fprintf(out, "%-16s %d\n", "mismatches", bad)
	fmt.Fprintf(out, "%-16s %d\n", "histogram total", total)
	fmt.Fprintf(out, "%-16s %d/%d\n", "sparse defined", sparse.Len(), sparse.Size())
	fmt.Fprintf(out, "%-16s %t\n", "mutating dense", mutating.Dense())
	fmt.Fprintf(out, "%-16s %s\n", "page file", pool.PageFilePath())
	fmt.Fprintf(out, "%-16s %d\n", "page file bytes", st.FileSize)
	fmt.Fprintf(out, "%-16s %s\n", "fill time", filled)

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetGauge().GetValue()
			if c := m.GetCounter(); c != nil {
				v = c.GetValue()
			}
			fmt.Fprintf(out, "%s %g\n", mf.GetName(), v)
		}
	}

	if bad != 0 {
		return fmt.Errorf("%d rows read back wrong", bad)
	}
	return nil
}

func fill(ints *columnar.PagedIntColumn, floats *columnar.PagedFloatColumn, rows int) (err error) {
	defer pagepool.Catch(&err)
	ints.DisableNotify()
	defer ints.EnableNotify()
	floats.DisableNotify()
	defer floats.EnableNotify()

	for row := 0; row < rows; row++ {
		ints.Add(int32(row))
		floats.Add(float32(row) / 2)
	}
	return nil
}

func verify(ints *columnar.PagedIntColumn, floats *columnar.PagedFloatColumn) (bad int, err error) {
	defer pagepool.Catch(&err)
	for row := 0; row < ints.Size(); row++ {
		if ints.Get(row) != int32(row) || floats.Get(row) != float32(row)/2 {
			bad++
		}
	}
	return bad, nil
}

// histogramTotal sums a histogram of ints, which must count every row.
func histogramTotal(ints *columnar.PagedIntColumn, bins int) (total int, err error) {
	defer pagepool.Catch(&err)
	h := columnar.NewHistogramColumn(ints, bins)
	defer h.Dispose()
	for _, n := range h.ToSlice() {
		total += int(n)
	}
	return total, nil
}
