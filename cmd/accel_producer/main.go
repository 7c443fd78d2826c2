// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/stride_computer/internal/app"
	"github.com/relabs-tech/stride_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./stride_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "use a synthetic walking-motion source instead of hardware")
	flag.Parse()

	log.Println("starting stride-computer accel producer (ADXL345 → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunAccelProducer(*mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
