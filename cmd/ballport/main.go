// Command ballport serves ball physics steps over stdin/stdout using 4-byte
// length-prefixed frames, so it can run as an Erlang port.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ballphys/config"
	"ballphys/game"
	"ballphys/physics"
	"ballphys/port"
	"ballphys/protocol"
)

func main() {
	envFile := flag.String("env", "", "env file to load (default .env if present)")
	engineName := flag.String("engine", "", "physics engine: box2d or chipmunk")
	codecName := flag.String("codec", "", "wire codec: json or msgpack")
	flag.Parse()

	// stdout carries frames, so logs must never go there.
	log.SetOutput(os.Stderr)
	log.SetPrefix("ballport: ")

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
	if *codecName != "" {
		cfg.Codec = *codecName
	}

	engine, err := physics.New(cfg.Engine)
	if err != nil {
		log.Fatal(err)
	}
	codec, err := protocol.NewCodec(cfg.Codec)
	if err != nil {
		log.Fatal(err)
	}
	stepper := game.NewStepper(engine, cfg.Tuning)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("serving (engine %s, codec %s)", engine.Name(), codec.Name())
	srv := port.NewServer(codec, stepper, port.NewFrameConn(os.Stdout), cfg.MaxFrame)
	if err := srv.Serve(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
	log.Println("input closed, exiting")
}
