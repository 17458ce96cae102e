package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
	"github.com/AiDave71/Bannerlord.LauncherManager/order"
)

// OrderCmd groups load order analysis and synthesis
var OrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Analyze and synthesize load orders",
	Long: `Grade a load order against the catalog's declared constraints, or
synthesize a topologically valid order from scratch.

The current order defaults to the enabled modules in catalog order; pass
--order-file to grade an explicit order (one module id per line).

Examples:
  blm order analyze                      # Grade the current order
  blm order analyze --synthesize         # Also propose a fixed order
  blm order analyze --order-file lo.txt  # Grade an explicit order
  blm order synthesize                   # Produce a valid order`,
}

var orderAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Grade a load order and suggest fixes",
	RunE:  runOrderAnalyze,
}

var orderSynthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Produce a topologically valid load order",
	RunE:  runOrderSynthesize,
}

var (
	orderFile       string
	orderSynthesize bool
)

func init() {
	registerCatalogFlags(OrderCmd)
	orderAnalyzeCmd.Flags().StringVar(&orderFile, "order-file", "", "Load order file, one module id per line")
	orderAnalyzeCmd.Flags().BoolVar(&orderSynthesize, "synthesize", false, "Attach a synthesized order to the result")

	OrderCmd.AddCommand(orderAnalyzeCmd)
	OrderCmd.AddCommand(orderSynthesizeCmd)
}

func runOrderAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	currentOrder := enabledOrder(cat, selection)
	if orderFile != "" {
		currentOrder, err = readOrderFile(orderFile)
		if err != nil {
			return err
		}
	}

	analyzer := order.NewAnalyzer(cat, logger.Logger)
	result := analyzer.Analyze(currentOrder, selection, order.AnalyzeOptions{
		Synthesize:  orderSynthesize,
		CyclePolicy: order.CyclePolicy(cfg.Order.CyclePolicy),
	})

	printHealth(result)

	for _, s := range result.Suggestions {
		tag := pterm.Yellow("[warning]")
		if s.Priority == order.PriorityCritical {
			tag = pterm.Red("[critical]")
		}
		pterm.Printf("%s %s (position %d -> %d)\n    %s\n",
			tag, s.ModuleID, s.CurrentPosition, s.SuggestedPosition, s.Explanation)
	}

	if orderSynthesize && len(result.OptimizedOrder) > 0 {
		pterm.Println("\nSynthesized order:")
		for i, id := range result.OptimizedOrder {
			pterm.Printf("  %3d  %s\n", i, id)
		}
	}

	if result.CriticalIssues > 0 {
		return errors.Newf("%d critical issue(s)", result.CriticalIssues)
	}
	return nil
}

func printHealth(result *order.Result) {
	score := fmt.Sprintf("%d/100", result.HealthScore)
	switch {
	case result.HealthScore >= 90:
		pterm.Success.Printf("Health %s - %s\n", pterm.Green(score), result.Summary)
	case result.HealthScore >= 60:
		pterm.Warning.Printf("Health %s - %s\n", pterm.Yellow(score), result.Summary)
	default:
		pterm.Error.Printf("Health %s - %s\n", pterm.Red(score), result.Summary)
	}
}

func runOrderSynthesize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	synth := order.NewSynthesizer(cat, logger.Logger, order.CyclePolicy(cfg.Order.CyclePolicy))
	result := synth.Synthesize(selection)

	for _, id := range result.Order {
		fmt.Println(id)
	}
	for _, broken := range result.BrokenEdges {
		pterm.Warning.Printf("Cycle broken: %s -> %s\n", broken.ModuleID, broken.DependencyID)
	}
	return nil
}
