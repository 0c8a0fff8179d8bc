package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/checkpoint"
	"github.com/born-ml/snapgrad/internal/config"
	"github.com/born-ml/snapgrad/internal/replay"
)

type replayFlags struct {
	configPath  string
	snapshot    string
	dtype       string
	logLevel    string
	showMetrics bool
}

func newReplayCmd() *cobra.Command {
	var flags replayFlags

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Record softmax(x*x) for two inputs, restore one from the other and compare gradients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "YAML replay configuration")
	f.StringVar(&flags.snapshot, "snapshot", "", "round-trip the checkpoint through this .bsnp file")
	f.StringVar(&flags.dtype, "dtype", "", "float32 or float64 (overrides config)")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	f.BoolVar(&flags.showMetrics, "metrics", false, "print checkpoint counters after the run")

	return cmd
}

func runReplay(cmd *cobra.Command, flags replayFlags) error {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flags.snapshot != "" {
		cfg.Snapshot = flags.snapshot
	}
	if flags.dtype != "" {
		cfg.DType = flags.dtype
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	autodiff.SetLogger(logger)
	defer autodiff.SetLogger(nil)

	registry := prometheus.NewRegistry()
	runner := replay.NewRunner(logger, checkpoint.NewMetrics(registry))

	res, err := runner.Run(cfg)
	if res != nil {
		printResult(cmd.OutOrStdout(), res)
	}
	if err != nil {
		return err
	}

	if flags.showMetrics {
		return printMetrics(cmd.OutOrStdout(), registry)
	}
	return nil
}

func printResult(w io.Writer, res *replay.Result) {
	fmt.Fprintln(w, "graph:")
	for _, line := range res.Trace {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, "stack %s: %d queues\n", res.StackID, len(res.Queues))
	for i, sizes := range res.Queues {
		fmt.Fprintf(w, "  queue %d: %v\n", i, sizes)
	}
	fmt.Fprintf(w, "grad a: %s\n", formatFloats(res.GradA))
	fmt.Fprintf(w, "grad b: %s\n", formatFloats(res.GradB))
}

func formatFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func printMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g",
				mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	fmt.Fprintln(w, "metrics:")
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}
