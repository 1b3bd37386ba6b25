package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/rider-sim/internal/citymap"
	"github.com/ukydev/rider-sim/internal/config"
	"github.com/ukydev/rider-sim/internal/db"
	"github.com/ukydev/rider-sim/internal/graph"
	"github.com/ukydev/rider-sim/internal/reports"
	"github.com/ukydev/rider-sim/internal/sim"
)

func runCmd(root *rootFlags) *cobra.Command {
	var (
		riders      int
		ticks       int
		seed        int64
		tickSeconds float64
		startHour   float64
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn riders and run the tick loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("riders") {
				cfg.Riders = riders
			}
			if f.Changed("ticks") {
				cfg.Ticks = ticks
			}
			if f.Changed("seed") {
				cfg.Seed = seed
			}
			if f.Changed("tick-seconds") {
				cfg.TickSeconds = tickSeconds
			}
			if f.Changed("start-hour") {
				cfg.StartHour = startHour
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSimulation(ctx, cfg, cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().IntVarP(&riders, "riders", "n", 0, "number of riders to spawn")
	cmd.Flags().IntVarP(&ticks, "ticks", "t", 0, "maximum number of ticks")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&tickSeconds, "tick-seconds", 0, "simulated seconds per tick")
	cmd.Flags().Float64Var(&startHour, "start-hour", 0, "time of day the run starts at")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newCity(cfg *config.Config, rng *rand.Rand) (*citymap.RiderCityMap, error) {
	return citymap.New(
		citymap.WithRand(rng),
		citymap.WithLogger(log.StandardLogger()),
		citymap.WithGrid(graph.GridSpec{Rows: cfg.Grid.Rows, Cols: cfg.Grid.Cols, Spacing: cfg.Grid.Spacing}),
	)
}

func runSimulation(ctx context.Context, cfg *config.Config, out io.Writer, asJSON bool) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	city, err := newCity(cfg, rng)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	opts := []sim.Option{
		sim.WithTickSeconds(cfg.TickSeconds),
		sim.WithStartHour(cfg.StartHour),
		sim.WithRunID(runID),
		sim.WithLogger(log.WithField("run_id", runID)),
	}

	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("Failed to disconnect from MongoDB")
			}
		}()
		log.WithField("db", cfg.MongoDB).Info("Connected to MongoDB")

		syncer := reports.NewSyncer(db.NewMongoCollection(client, cfg.MongoDB, db.HazardReports), log.StandardLogger())
		if _, err := syncer.Pull(ctx, city); err != nil {
			return err
		}
		var trips db.RiderTripCollection = db.NewMongoCollection(client, cfg.MongoDB, db.RiderTrips)
		opts = append(opts, sim.WithTripSink(trips))
	}

	if err := city.SpawnRiders(cfg.Riders); err != nil {
		return err
	}
	engine, err := sim.NewEngine(city, opts...)
	if err != nil {
		return err
	}
	summary, err := engine.Run(ctx, cfg.Ticks)
	if err != nil {
		return err
	}
	return printSummary(out, summary, asJSON)
}

func printSummary(out io.Writer, s sim.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(out, "run %s\n", s.RunID)
	fmt.Fprintf(out, "  ticks:            %d (%.0f s simulated)\n", s.Ticks, s.SimulatedTime)
	fmt.Fprintf(out, "  arrived:          %d/%d\n", s.Arrived, s.Riders)
	fmt.Fprintf(out, "  mean safety:      %.1f\n", s.MeanSafetyScore)
	fmt.Fprintf(out, "  near misses:      %d\n", s.NearMisses)
	fmt.Fprintf(out, "  hazards avoided:  %d\n", s.HazardsAvoided)
	fmt.Fprintf(out, "  risky maneuvers:  %d\n", s.RiskyManeuvers)
	fmt.Fprintf(out, "  distance:         %.0f m\n", s.TotalDistance)

	names := make([]string, 0, len(s.Decisions))
	for name := range s.Decisions {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "  decisions:")
	for _, name := range names {
		fmt.Fprintf(out, "    %-16s %d\n", name, s.Decisions[name])
	}
	return nil
}
