package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/satlink/internal/observability"
	"github.com/danmuck/satlink/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML run config (defaults apply when empty)")
	seed := flag.Int64("seed", -1, "override the run seed for link, satellite, and ground draws")
	flag.Parse()

	observability.InitLogger("satlinkd")

	cfg := sim.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadRunConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "satlinkd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seed >= 0 {
		cfg = cfg.WithSeed(*seed)
	}

	svc, err := sim.NewService(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "satlinkd: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "satlinkd: %v\n", err)
		os.Exit(1)
	}
}
