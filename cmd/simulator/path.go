package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/rider-sim/internal/config"
	"github.com/ukydev/rider-sim/internal/db"
	"github.com/ukydev/rider-sim/internal/hazard"
	"github.com/ukydev/rider-sim/internal/profile"
	"github.com/ukydev/rider-sim/internal/reports"
)

func pathCmd(root *rootFlags) *cobra.Command {
	var riderType string

	cmd := &cobra.Command{
		Use:   "path [from] [to]",
		Short: "Plan a route between two intersections and score its hazard risk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			typ, ok := profile.ParseRiderType(riderType)
			if !ok {
				return fmt.Errorf("unknown rider type %q", riderType)
			}
			return planPath(cfg, cmd.OutOrStdout(), args[0], args[1], typ)
		},
	}

	cmd.Flags().StringVar(&riderType, "type", profile.Commuter.String(), "rider type used for the risk score")
	return cmd
}

func planPath(cfg *config.Config, out io.Writer, from, to string, typ profile.RiderType) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	city, err := newCity(cfg, rng)
	if err != nil {
		return err
	}
	if _, err := city.Network().Intersection(from); err != nil {
		return err
	}
	if _, err := city.Network().Intersection(to); err != nil {
		return err
	}

	p := profile.Generate(typ, rng)
	path := city.FindRiderPath(from, to, p, typ)
	if len(path) == 0 {
		fmt.Fprintf(out, "no route from %s to %s\n", from, to)
		return nil
	}

	total := 0.0
	for _, id := range path {
		road := city.Roads()[id]
		total += road.Length
		lane := ""
		if city.IsMotorcycleLane(id) {
			lane = " [motorcycle lane]"
		}
		fmt.Fprintf(out, "%-10s %-5s %4.0f m  %2.0f km/h%s\n", id, road.Direction, road.Length, road.SpeedLimit, lane)
		for _, h := range city.Hazards().OnRoad(id) {
			fmt.Fprintf(out, "    %s\n", hazard.Warning(h))
		}
	}
	fmt.Fprintf(out, "%d roads, %.0f m, risk %.2f for %s\n", len(path), total, city.PathRisk(path, p, typ), typ)

	for _, sc := range city.EligibleShortcuts(p) {
		fmt.Fprintf(out, "shortcut %s %s->%s saves %.0f s (risk %.1f): %s\n", sc.ID, sc.From, sc.To, sc.TimeSaving, sc.RiskLevel, sc.Description)
	}
	return nil
}

func hazardsCmd(root *rootFlags) *cobra.Command {
	var push bool

	cmd := &cobra.Command{
		Use:   "hazards",
		Short: "List the active hazards of the city, optionally pushing them to MongoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			return listHazards(cmd.Context(), cfg, cmd.OutOrStdout(), push)
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "upsert the hazards into the hazard_reports collection")
	return cmd
}

func listHazards(ctx context.Context, cfg *config.Config, out io.Writer, push bool) error {
	city, err := newCity(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}
	active := city.Hazards().Active()
	for _, h := range active {
		road := h.AffectedRoad
		if road == "" {
			road = "-"
		}
		fmt.Fprintf(out, "%-20s %-20s %-8s %-10s %s\n", h.ID, h.Type, h.Severity, road, hazard.Warning(h))
	}

	if !push {
		return nil
	}
	if cfg.MongoURI == "" {
		return fmt.Errorf("--push needs MONGO_URI")
	}
	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	syncer := reports.NewSyncer(db.NewMongoCollection(client, cfg.MongoDB, db.HazardReports), log.StandardLogger())
	n, err := syncer.Push(ctx, active)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "pushed %d hazards\n", n)
	return nil
}
