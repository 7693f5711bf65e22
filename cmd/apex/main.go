// Package main provides the apex CLI: Monte Carlo simulation, vertical
// ticket and horizontal sequence construction for a race-card snapshot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/logger"
	"github.com/pace146/new-apex/internal/metrics"
	"github.com/pace146/new-apex/internal/models"
	"github.com/pace146/new-apex/internal/pipeline"
	"github.com/pace146/new-apex/internal/render"
	"github.com/pace146/new-apex/internal/sequence"
	"github.com/pace146/new-apex/internal/simulate"
	"github.com/pace146/new-apex/internal/snapshot"
	"github.com/pace146/new-apex/internal/tickets"
	"github.com/pace146/new-apex/internal/tier"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	inputPath  string
	outputDir  string
	baseStake  float64
	seed       int64
	trials     int

	cfg *config.Config
	lg  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apex",
	Short: "Turn race ratings into capped, bankroll-aware wagering tickets",
	Long: `Apex reads a flat race-card snapshot with composite ratings, estimates
win/place/show probabilities by Monte Carlo simulation, tiers each field,
and builds vertical exotic tickets plus multi-race sequences under
bankroll allocation and hard dollar caps.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.MustLoad(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyOverrides(cmd)
		lg = logger.NewLogger(cfg.App.LogLevel, cfg.IsProduction())
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "apex_output_with_mc.csv", "Path to the card snapshot CSV")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out-dir", "o", "./output", "Directory for generated CSV outputs")
	rootCmd.PersistentFlags().Float64Var(&baseStake, "base", 0, "Override the base bankroll stake")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Override the Monte Carlo random seed")
	rootCmd.PersistentFlags().IntVar(&trials, "trials", 0, "Override the Monte Carlo trial count")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(verticalsCmd)
	rootCmd.AddCommand(horizontalsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// applyOverrides folds command-line overrides into the loaded configuration.
func applyOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("base") {
		cfg.Horizontal.BaseBankroll = baseStake
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if cmd.Flags().Changed("trials") {
		cfg.Simulation.Trials = trials
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: simulate, tier, build tickets and sequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCard(cmd.Context(), inputPath)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run Monte Carlo simulation and write the snapshot back with probabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := loadCard(inputPath)
		if err != nil {
			return err
		}
		sim := simulate.New(cfg.Simulation, lg)
		sim.SimulateCard(card)
		return writeOutput("card_with_mc.csv", func(f *os.File) error {
			return render.WriteProbabilitiesCSV(f, card)
		})
	},
}

var verticalsCmd = &cobra.Command{
	Use:   "verticals",
	Short: "Build exacta/trifecta/superfecta tickets for every race",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := loadCard(inputPath)
		if err != nil {
			return err
		}
		ensureProbabilities(card)
		built := tickets.NewBuilder(cfg.Vertical, lg).BuildCard(card)
		render.WriteTicketTable(os.Stdout, built)
		return writeOutput("verticals.csv", func(f *os.File) error {
			return render.WriteTicketsCSV(f, built)
		})
	},
}

var horizontalsCmd = &cobra.Command{
	Use:   "horizontals",
	Short: "Build Daily Double through Pick 6 sequences under bankroll caps",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := loadCard(inputPath)
		if err != nil {
			return err
		}
		ensureProbabilities(card)
		classifier := tier.New(cfg.Tiers, cfg.Chaos, cfg.Single, lg)
		states := make(map[int]models.ChaosState, len(card.Races))
		hasAdversity := card.HasAdversityData()
		for i := range card.Races {
			race := &card.Races[i]
			if race.IsEmpty() {
				continue
			}
			states[race.Number] = classifier.Classify(race, hasAdversity)
		}
		sequences := sequence.NewBuilder(cfg.Horizontal, lg).BuildCard(card, states)
		render.WriteSequenceTable(os.Stdout, sequences)
		return writeOutput("horizontals.csv", func(f *os.File) error {
			return render.WriteSequencesCSV(f, sequences)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("apex %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

// runCard executes the full pipeline for one snapshot and writes slips and
// flat CSV outputs.
func runCard(ctx context.Context, path string) error {
	card, err := loadCard(path)
	if err != nil {
		return err
	}

	result, err := pipeline.New(cfg, lg).Run(ctx, card)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	render.WriteTicketTable(os.Stdout, result.Tickets)
	render.WriteSequenceTable(os.Stdout, result.Sequences)

	if err := writeOutput("verticals.csv", func(f *os.File) error {
		return render.WriteTicketsCSV(f, result.Tickets)
	}); err != nil {
		return err
	}
	if err := writeOutput("horizontals.csv", func(f *os.File) error {
		return render.WriteSequencesCSV(f, result.Sequences)
	}); err != nil {
		return err
	}
	if result.Simulated {
		if err := writeOutput("card_with_mc.csv", func(f *os.File) error {
			return render.WriteProbabilitiesCSV(f, card)
		}); err != nil {
			return err
		}
	}
	return nil
}

// loadCard reads the snapshot, counting schema rejections.
func loadCard(path string) (*models.Card, error) {
	card, err := snapshot.NewLoader(cfg.Schema, lg).LoadFile(path)
	if err != nil {
		var schemaErr *models.SchemaError
		if errors.As(err, &schemaErr) {
			metrics.SchemaErrorsTotal.Inc()
		}
		return nil, err
	}
	return card, nil
}

// ensureProbabilities simulates the card when the snapshot carried no
// probability column.
func ensureProbabilities(card *models.Card) {
	if card.HasProbabilities() {
		return
	}
	lg.Info("No probability column in snapshot, running Monte Carlo simulation")
	simulate.New(cfg.Simulation, lg).SimulateCard(card)
}

func writeOutput(name string, write func(*os.File) error) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	lg.WithField("path", path).Info("Output written")
	return nil
}
