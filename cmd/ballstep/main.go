// Command ballstep runs one or more ticks on a JSON step request read from a
// file or stdin and prints the JSON result. Useful for poking at tuning.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"ballphys/config"
	"ballphys/game"
	"ballphys/physics"
	"ballphys/port"
	"ballphys/protocol"
)

func main() {
	envFile := flag.String("env", "", "env file to load (default .env if present)")
	engineName := flag.String("engine", "", "physics engine: box2d or chipmunk")
	ticks := flag.Int("ticks", 1, "number of ticks to run, feeding each result back in")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("ballstep: ")

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	engine, err := physics.New(cfg.Engine)
	if err != nil {
		log.Fatal(err)
	}
	stepper := game.NewStepper(engine, cfg.Tuning)

	in := io.Reader(os.Stdin)
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	var req protocol.Step
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		log.Fatalf("decode request: %v", err)
	}
	if *ticks < 1 {
		log.Fatalf("ticks must be at least 1, got %d", *ticks)
	}

	var res protocol.Result
	for i := 0; i < *ticks; i++ {
		res, err = port.RunStep(stepper, req)
		if err != nil {
			log.Fatalf("tick %d: %v", i, err)
		}
		req.Ball = res.Ball
		req.Players = res.Players
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal(err)
	}
}
