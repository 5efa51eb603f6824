package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simfolio/simfolio/internal/app"
	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/models"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "simfolio",
		Short:         "Manage a simulated stock portfolio",
		Version:       common.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")

	cmd.AddCommand(
		newTradeCmd(&configPath, models.TradeActionBuy, "buy", "Buy a new position or add to an existing one"),
		newTradeCmd(&configPath, models.TradeActionAdd, "add", "Add to an existing position"),
		newTradeCmd(&configPath, models.TradeActionSell, "sell", "Sell a position"),
		newTradeCmd(&configPath, models.TradeActionReduce, "reduce", "Reduce a position"),
		newListCmd(&configPath),
		newTradesCmd(&configPath),
		newPriceCmd(&configPath),
		newEvaluateCmd(&configPath),
		newSnapshotCmd(&configPath),
		newReportCmd(&configPath),
	)

	return cmd
}

// openApp builds the application core for one CLI invocation.
func openApp(configPath string) (*app.App, error) {
	a, err := app.NewApp(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

func newTradeCmd(configPath *string, action models.TradeAction, use, short string) *cobra.Command {
	var name, reason string

	cmd := &cobra.Command{
		Use:   use + " CODE SHARES PRICE",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid share count %q: %w", args[1], err)
			}
			price, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[2], err)
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			trade, err := a.PortfolioService.RecordTrade(cmd.Context(), interfaces.TradeRequest{
				Action: action,
				Code:   args[0],
				Name:   name,
				Shares: shares,
				Price:  price,
				Reason: reason,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%s %d x %s @ %.2f\n", strings.ToUpper(string(trade.Action)), trade.Shares, trade.Code, trade.Price)
			fmt.Printf("  gross %s  commission %s  stamp duty %s  net %s\n",
				common.FormatMoney(trade.Gross), common.FormatMoney(trade.Commission),
				common.FormatMoney(trade.StampDuty), common.FormatMoney(trade.Net))

			p, err := a.PortfolioService.GetPortfolio(cmd.Context())
			if err == nil {
				fmt.Printf("  available cash %s\n", common.FormatMoney(p.AvailableCash))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the stock")
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in the trade journal")

	return cmd
}

func newListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show current holdings and account state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			snapshot, err := a.PortfolioService.Evaluate(cmd.Context(), nil)
			if err != nil {
				return err
			}

			fmt.Print(a.AdvisorService.QuickSummary(snapshot))
			return nil
		},
	}
}

func newTradesCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Show the trade journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			trades, err := a.PortfolioService.ListTrades(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(trades) == 0 {
				fmt.Println("No trades recorded.")
				return nil
			}

			for _, t := range trades {
				fmt.Printf("%s  %-6s %-8s %6d @ %.2f  net %s",
					t.Timestamp.Format("2006-01-02 15:04"), t.Action, t.Code,
					t.Shares, t.Price, common.FormatMoney(t.Net))
				if t.Reason != "" {
					fmt.Printf("  (%s)", t.Reason)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of trades to show, 0 for all")

	return cmd
}

// parsePricePairs parses CODE=PRICE arguments.
func parsePricePairs(args []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(args))
	for _, arg := range args {
		code, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected CODE=PRICE, got %q", arg)
		}
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price in %q: %w", arg, err)
		}
		prices[code] = price
	}
	return prices, nil
}

func newPriceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "price CODE=PRICE [CODE=PRICE...]",
		Short: "Update current prices for held positions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prices, err := parsePricePairs(args)
			if err != nil {
				return err
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.PortfolioService.UpdatePrices(cmd.Context(), prices); err != nil {
				return err
			}

			fmt.Printf("Updated %d price(s).\n", len(prices))
			return nil
		},
	}
}

func newEvaluateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [CODE=PRICE...]",
		Short: "Evaluate the portfolio, optionally with price overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			prices, err := parsePricePairs(args)
			if err != nil {
				return err
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			snapshot, err := a.PortfolioService.Evaluate(cmd.Context(), prices)
			if err != nil {
				return err
			}

			fmt.Print(a.AdvisorService.QuickSummary(snapshot))
			return nil
		},
	}
}

func newSnapshotCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Record today's daily account snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.PortfolioService.TakeSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%s  assets %s  daily %s (%s)  total %s\n",
				snap.Date, common.FormatMoney(snap.TotalAssets),
				common.FormatSignedMoney(snap.DailyPnL), common.FormatSignedPct(snap.DailyReturnPct),
				common.FormatSignedPct(snap.TotalReturnPct))
			return nil
		},
	}
}

func newReportCmd(configPath *string) *cobra.Command {
	var noAdvice, noChart, printOut bool

	cmd := &cobra.Command{
		Use:   "report [CODE=PRICE...]",
		Short: "Generate and store today's portfolio report",
		RunE: func(cmd *cobra.Command, args []string) error {
			prices, err := parsePricePairs(args)
			if err != nil {
				return err
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.ReportService.GenerateDaily(cmd.Context(), interfaces.ReportOptions{
				Prices: prices,
				Advice: a.Config.Advice.Enabled && !noAdvice,
				Chart:  a.Config.Report.IncludeChart && !noChart,
			})
			if err != nil {
				return err
			}

			if printOut {
				fmt.Println(report.Markdown)
			} else {
				fmt.Printf("Report %s stored for %s.\n", report.ID, report.Date)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noAdvice, "no-advice", false, "skip operation advice")
	cmd.Flags().BoolVar(&noChart, "no-chart", false, "skip the weights chart")
	cmd.Flags().BoolVar(&printOut, "print", false, "print the report markdown to stdout")

	return cmd
}
