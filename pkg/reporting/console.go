package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// ConsoleReporter renders scan results as tables on a writer.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a console reporter. A nil writer defaults to
// stdout.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

// PrintSummary renders one row per strategy run: status, signal count and
// the error for failed runs.
func (r *ConsoleReporter) PrintSummary(results []*types.AlgorithmResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SCAN SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Strategy", "Status", "Signals", "Notes"})
	for _, res := range results {
		t.AppendRow(table.Row{
			res.Strategy,
			statusString(res),
			len(res.Signals),
			summaryNotes(res),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// PrintSignals renders every emitted signal, strongest first.
func (r *ConsoleReporter) PrintSignals(results []*types.AlgorithmResult) {
	signals := collectSignals(results)
	if len(signals) == 0 {
		fmt.Fprintln(r.out, "No signals generated.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("TRADING SIGNALS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Asset", "Type", "Strategy", "Price", "Strength", "Confidence", "Reason"})
	for _, s := range signals {
		t.AppendRow(table.Row{
			s.signal.AssetID,
			string(s.signal.Type),
			s.strategy,
			fmt.Sprintf("%.4f", s.signal.Price),
			fmt.Sprintf("%.2f", s.signal.Strength),
			fmt.Sprintf("%.2f", s.signal.Confidence),
			s.signal.Reason,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 70, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

type strategySignal struct {
	strategy string
	signal   types.TradingSignal
}

func collectSignals(results []*types.AlgorithmResult) []strategySignal {
	var signals []strategySignal
	for _, res := range results {
		for _, s := range res.Signals {
			signals = append(signals, strategySignal{strategy: res.Strategy, signal: s})
		}
	}
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].signal.Strength > signals[j].signal.Strength
	})
	return signals
}

func statusString(res *types.AlgorithmResult) string {
	if res.Success {
		return "✅ ok"
	}
	return "❌ failed"
}

func summaryNotes(res *types.AlgorithmResult) string {
	if res.Error != "" {
		return res.Error
	}
	if skipped, ok := res.Metadata["skippedAssets"].([]string); ok && len(skipped) > 0 {
		return fmt.Sprintf("skipped: %v", skipped)
	}
	if failed, ok := res.Metadata["failedAssets"].([]string); ok && len(failed) > 0 {
		return fmt.Sprintf("failed assets: %v", failed)
	}
	return ""
}
