package main

import (
	"flag"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xtding233/tile-merge/internal/game"
	"github.com/xtding233/tile-merge/internal/sim"
)

// Runs random games against a profile and prints summary stats as JSON.
func main() {
	configDir := flag.String("config", "./configs", "base directory holding profiles/")
	profile := flag.String("profile", game.DefaultProfile, "profile name")
	trials := flag.Int("trials", 1000, "number of games")
	moves := flag.Int("moves", 0, "placements per game; 0 = 4x the cell count")
	seed := flag.Uint64("seed", 1, "base seed")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	_, cfg, err := game.NewLoader(*configDir).Resolve(*profile, game.Overrides{})
	if err != nil {
		log.Fatal("resolve profile", zap.String("profile", *profile), zap.Error(err))
	}
	res, err := sim.Run(sim.Params{Config: cfg, Trials: *trials, Moves: *moves, Seed: *seed, Logger: log})
	if err != nil {
		log.Fatal("simulate", zap.Error(err))
	}
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal("encode", zap.Error(err))
	}
}
