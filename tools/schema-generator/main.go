package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/dashboard/config"
)

func main() {
	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	// Run from the schema package directory via go:generate, or from the repo root.
	outputPath := "dashboard.embedded.schema.json"
	if _, err := os.Stat("schema"); err == nil {
		outputPath = filepath.Join("schema", outputPath)
	}

	if err := os.WriteFile(outputPath, schemaBytes, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", outputPath)
}
