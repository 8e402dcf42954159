package main

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/hekman/twin-cities-map/pkg/mapengine"
	"github.com/hekman/twin-cities-map/pkg/sources"
)

var cli struct {
	Dataset      string  `help:"Path or URL of the twin-city pair CSV." default:"${default_dataset}"`
	Boundaries   string  `help:"URL of the world boundary GeoJSON." default:"${default_boundaries}"`
	Config       string  `help:"Optional TOML config file." type:"path"`
	Width        int     `help:"Internal rendering width." default:"1920"`
	Height       int     `help:"Internal rendering height." default:"1080"`
	Scale        float64 `help:"Projection scale." default:"300"`
	WindowWidth  int     `help:"Initial window width." default:"1280"`
	WindowHeight int     `help:"Initial window height." default:"720"`
	TPS          int     `help:"Engine updates per second." default:"60"`
	NoCache      bool    `help:"Bypass the parsed-dataset cache."`
}

// fileConfig mirrors the flags that make sense to pin in a config file.
// File values apply only where the corresponding flag was left at its
// default, so explicit flags always win.
type fileConfig struct {
	Dataset    string  `toml:"dataset"`
	Boundaries string  `toml:"boundaries"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Scale      float64 `toml:"scale"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("twin-cities-viewer"),
		kong.Description("Interactive world map of twin city relationships."),
		kong.Vars{
			"default_dataset":    sources.DefaultPairsPath,
			"default_boundaries": sources.WorldBoundariesURL,
		},
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cli.Config != "" {
		applyConfigFile(cli.Config)
	}

	engine := mapengine.NewEngine(cli.Width, cli.Height, cli.Scale)

	var cache *sources.PairCache
	if !cli.NoCache {
		if c, err := sources.OpenPairCache("data/pairdb"); err != nil {
			log.Printf("Dataset cache unavailable: %v", err)
		} else {
			cache = c
			defer func() {
				if err := c.Close(); err != nil {
					log.Printf("Error closing dataset cache: %v", err)
				}
			}()
		}
	}

	records, dropped, err := sources.LoadPairsCached(cli.Dataset, cache)
	if err != nil {
		log.Fatalf("Failed to load pair dataset: %v", err)
	}
	log.Printf("Loaded %d pair records (%d rows dropped)", len(records), dropped)
	engine.SetDataset(records, dropped)

	if fc, err := sources.FetchBoundaries(cli.Boundaries); err != nil {
		log.Printf("Boundary geometry unavailable: %v (rendering without country shapes)", err)
		engine.SetBoundaries(nil)
	} else {
		engine.SetBoundaries(fc)
	}

	defer engine.Close()
	ebiten.SetTPS(cli.TPS)
	ebiten.SetWindowSize(cli.WindowWidth, cli.WindowHeight)
	ebiten.SetWindowTitle("Twin Cities of the World")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}

func applyConfigFile(path string) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		log.Fatalf("Failed to read config %s: %v", path, err)
	}
	if fc.Dataset != "" && cli.Dataset == sources.DefaultPairsPath {
		cli.Dataset = fc.Dataset
	}
	if fc.Boundaries != "" && cli.Boundaries == sources.WorldBoundariesURL {
		cli.Boundaries = fc.Boundaries
	}
	if fc.Width > 0 && cli.Width == 1920 {
		cli.Width = fc.Width
	}
	if fc.Height > 0 && cli.Height == 1080 {
		cli.Height = fc.Height
	}
	if fc.Scale > 0 && cli.Scale == 300 {
		cli.Scale = fc.Scale
	}
}
