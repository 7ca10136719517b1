// Command podforge creates print-on-demand store products from local
// design files: it uploads artwork, creates the product with an initial
// variant batch, and appends the remaining variants in paced batches.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appkg "github.com/mirandola/podforge/internal/app"
	"github.com/mirandola/podforge/internal/fleet"
)

func main() {
	var (
		mode    string
		product string
		design  string
		yes     bool
	)
	flag.StringVar(&mode, "mode", "", "run mode: single, all-products, all-designs, matrix (interactive menu if empty)")
	flag.StringVar(&product, "product", "", "product key for single and all-designs modes")
	flag.StringVar(&design, "design", "", "design file for single and all-products modes")
	flag.BoolVar(&yes, "yes", false, "skip confirmation prompts for mass runs")
	flag.Parse()

	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, mode, product, design, yes); err != nil {
		lg.Error("Run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, mode, product, design string, yes bool) error {
	cfg, err := appkg.LoadConfig()
	if err != nil {
		return err
	}

	a, err := appkg.New(cfg)
	if err != nil {
		return err
	}

	if err := a.ValidateStore(ctx); err != nil {
		return err
	}

	if mode == "" {
		return interactive(ctx, a)
	}

	agg, err := dispatch(ctx, a, mode, product, design, yes)
	if err != nil {
		return err
	}
	report(agg)
	if !agg.Success() {
		return errors.New("run created no products")
	}
	return nil
}

func dispatch(ctx context.Context, a *appkg.App, mode, product, design string, yes bool) (fleet.Aggregate, error) {
	switch mode {
	case "single":
		if design == "" || product == "" {
			return fleet.Aggregate{}, errors.New("single mode needs -design and -product")
		}
		return a.BuildSingle(ctx, design, product)
	case "all-products":
		if design == "" {
			return fleet.Aggregate{}, errors.New("all-products mode needs -design")
		}
		return a.BuildAllProducts(ctx, design)
	case "all-designs":
		if product == "" {
			return fleet.Aggregate{}, errors.New("all-designs mode needs -product")
		}
		if !yes && !confirm(fmt.Sprintf("Build every design on %s?", product)) {
			return fleet.Aggregate{}, errors.New("aborted")
		}
		return a.BuildAllDesigns(ctx, product)
	case "matrix":
		if !yes && !confirm("Build every design on every product?") {
			return fleet.Aggregate{}, errors.New("aborted")
		}
		return a.BuildMatrix(ctx)
	default:
		return fleet.Aggregate{}, errors.Errorf("unknown mode %q", mode)
	}
}

// interactive walks the operator through mode and target selection.
func interactive(ctx context.Context, a *appkg.App) error {
	fmt.Println("podforge")
	fmt.Println("  1) single       one design, one product")
	fmt.Println("  2) all-products one design, every product")
	fmt.Println("  3) all-designs  every design, one product")
	fmt.Println("  4) matrix       every design, every product")
	choice := prompt("Select mode [1-4]: ")

	var (
		mode    string
		design  string
		product string
	)
	switch choice {
	case "1":
		mode = "single"
		design = pickDesign(a)
		product = pickProduct(a)
	case "2":
		mode = "all-products"
		design = pickDesign(a)
	case "3":
		mode = "all-designs"
		product = pickProduct(a)
	case "4":
		mode = "matrix"
	default:
		return errors.Errorf("unknown selection %q", choice)
	}

	agg, err := dispatch(ctx, a, mode, product, design, false)
	if err != nil {
		return err
	}
	report(agg)
	if !agg.Success() {
		return errors.New("run created no products")
	}
	return nil
}

func pickDesign(a *appkg.App) string {
	designs, err := a.Designs()
	if err != nil || len(designs) == 0 {
		return prompt("Design file path: ")
	}
	for i, d := range designs {
		fmt.Printf("  %d) %s\n", i+1, d)
	}
	choice := prompt(fmt.Sprintf("Select design [1-%d]: ", len(designs)))
	var idx int
	if _, err := fmt.Sscanf(choice, "%d", &idx); err == nil && idx >= 1 && idx <= len(designs) {
		return designs[idx-1]
	}
	return choice
}

func pickProduct(a *appkg.App) string {
	keys := a.ProductKeys()
	for i, k := range keys {
		if s, err := a.VariantSummary(k); err == nil {
			fmt.Printf("  %d) %s (%d variants, %d colors, sizes: %s)\n",
				i+1, k, s.Count, s.Colors, strings.Join(s.Sizes, " "))
		} else {
			fmt.Printf("  %d) %s\n", i+1, k)
		}
	}
	choice := prompt(fmt.Sprintf("Select product [1-%d]: ", len(keys)))
	var idx int
	if _, err := fmt.Sscanf(choice, "%d", &idx); err == nil && idx >= 1 && idx <= len(keys) {
		return keys[idx-1]
	}
	return choice
}

func prompt(label string) string {
	fmt.Print(label)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

func confirm(question string) bool {
	answer := prompt(question + " [y/N]: ")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func report(agg fleet.Aggregate) {
	fmt.Printf("\n%s run: %d attempted, %d succeeded, %d variants created\n",
		agg.Mode, agg.Attempted, agg.Succeeded, agg.TotalVariantsCreated)
	for _, r := range agg.Results {
		status := string(r.Outcome)
		fmt.Printf("  [%s] %s on %s: %d/%d variants",
			status, r.DesignFile, r.ProductKey, r.VariantsCreated, r.VariantsRequested)
		if r.Error != "" {
			fmt.Printf(" (%s)", r.Error)
		}
		fmt.Println()
	}
}
