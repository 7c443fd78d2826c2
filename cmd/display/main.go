package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/stride_computer/internal/app"
	"github.com/relabs-tech/stride_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./stride_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting stride-computer display (MQTT subscriber → ssd1306)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
