package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
)

func newPuzzleCmd(cfg *Config) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Print the puzzle for an instant, answer included.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now().UTC()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				t = parsed
			}
			r, err := roster.Open(cfg.roster)
			if err != nil {
				return err
			}
			sel := daily.NewSelector(r, cfg.policy())
			p, ok := sel.PuzzleAt(t)
			if !ok {
				return fmt.Errorf("roster %q has no members", cfg.roster)
			}
			printPuzzle(cmd.OutOrStdout(), sel.Key(t), p)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "RFC3339 instant to select for (default now)")
	return cmd
}

func newRosterCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Print roster counts by chamber and party.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := roster.Open(cfg.roster)
			if err != nil {
				return err
			}
			stats := r.Stats()
			keys := make([]string, 0, len(stats))
			for k := range stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%-10s %d\n", k, stats[k])
			}
			return nil
		},
	}
}

// printPuzzle writes a human-readable puzzle with US-style number grouping.
func printPuzzle(w io.Writer, period string, p game.Puzzle) {
	pr := message.NewPrinter(language.AmericanEnglish)
	a := p.Answer

	pr.Fprintf(w, "Period:        %s\n", period)
	pr.Fprintf(w, "Answer:        %s (%s-%s)\n", a.Name, a.Party, a.State)
	pr.Fprintf(w, "Raised:        $%.0f\n", p.AmountRaised)
	fm := p.FinanceMix
	pr.Fprintf(w, "  large %.1f%%  small %.1f%%  PAC %.1f%%  other %.1f%%  self %.1f%%\n",
		fm.Large.Pct, fm.Small.Pct, fm.PAC.Pct, fm.Other.Pct, fm.Self.Pct)
	pr.Fprintf(w, "Net worth:     $%.0f\n", p.CurrentNetWorth)
	pr.Fprintf(w, "Stock value:   $%.0f (%d trades, %d tickers)\n", p.StockValueUSD, p.TradesCount, p.TickerHoldingCount)
	pr.Fprintf(w, "Corporate PAC: $%.0f\n", p.CorporatePACMoney)
	printNamed(pr, w, "Top contributors", p.TopContributors)
	printNamed(pr, w, "Top industries", p.TopIndustries)
	if len(p.Committees) > 0 {
		pr.Fprintf(w, "Committees:    %s\n", strings.Join(p.Committees, "; "))
	}
}

func printNamed(pr *message.Printer, w io.Writer, title string, rows []roster.Named) {
	if len(rows) == 0 {
		return
	}
	pr.Fprintf(w, "%s:\n", title)
	for _, n := range rows {
		pr.Fprintf(w, "  %-32s $%.0f (%.1f%%)\n", n.Name, n.Amount, n.Share*100)
	}
}
