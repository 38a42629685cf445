package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/lightcore/internal/config"
	"chosenoffset.com/lightcore/internal/game"
	"chosenoffset.com/lightcore/internal/observability/log"
	ebitenrender "chosenoffset.com/lightcore/internal/render/ebiten"
	"chosenoffset.com/lightcore/internal/world/mapscan"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	mapPath := flag.String("map", "data/maps/demo.json", "map JSON file, or a directory to take the first map from")
	entitiesPath := flag.String("entities", "data/entities.yaml", "path to the entity library")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lightcore: %v\n", err)
		os.Exit(1)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lightcore: %v\n", err)
		os.Exit(1)
	}
	logger, err := log.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lightcore: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	selected, available, err := mapscan.Resolve(*mapPath)
	if err != nil {
		logger.Fatal("failed to find a map", log.Error(err))
	}
	for _, m := range available {
		logger.Debug("map available", log.String("name", m.Name), log.String("path", m.Path))
	}

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	gameManager := game.NewManager(renderer, inputMgr, logger, cfg.Screen.Width, cfg.Screen.Height)
	if err := gameManager.LoadGame(cfg, game.Paths{Map: selected.Path, Entities: *entitiesPath}); err != nil {
		logger.Fatal("failed to load game", log.Error(err))
	}

	// Set up the window
	engine.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	engine.SetWindowTitle("lightcore - " + gameManager.Game.GameMap.Data.Name)
	engine.SetWindowResizable(true)

	logger.Info("starting game",
		log.String("config", *configPath),
		log.String("map", selected.Path),
		log.Int("width", cfg.Screen.Width),
		log.Int("height", cfg.Screen.Height))
	if err := engine.RunGame(gameManager); err != nil {
		logger.Fatal("game loop stopped", log.Error(err))
	}
}
