package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/ucca"
	"github.com/siherrmann/ucca/helper"
	"github.com/siherrmann/ucca/model"
)

const sampleText = `The quick brown fox jumped over the lazy dog .

After a long day the fox returned to its den .`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "ucca",
		Username: "postgres",
		Password: "postgres",
	}

	c, err := ucca.NewCorpus(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create corpus: %v", err)
	}
	defer c.Close()

	// Set up the default pipeline (tokenization + embeddings)
	if err := c.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Tokenize the raw text into a terminal-only passage and store it
	fmt.Println("Ingesting passage...")
	record, passage, err := c.ProcessAndInsertPassage(sampleText, "1", model.Metadata{
		"corpus": "example",
		"genre":  "fable",
	})
	if err != nil {
		log.Fatalf("Failed to process and insert passage: %v", err)
	}
	fmt.Printf("Passage inserted with RID: %s\n", record.RID)

	tl, _ := model.TerminalLayerOf(passage)
	fmt.Printf("Tokenized into %d terminals\n", len(tl.Terminals()))

	// Load the passage back from its stored XML
	loaded, err := c.LoadPassage(record.RID)
	if err != nil {
		log.Fatalf("Failed to load passage: %v", err)
	}
	fmt.Printf("Round trip equal: %v\n", passage.Equal(loaded))

	// Perform a keyword search over the stored corpus
	queryText := "lazy dog"

	fmt.Printf("\nQuerying: %s\n", queryText)

	results, err := c.SearchPassages(context.Background(), queryText, 5)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	// Display results
	fmt.Printf("\nFound %d passages:\n", len(results))
	for i, result := range results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Passage ID: %s\n", result.PassageID)
		fmt.Printf("Rank: %.4f\n", result.Rank)
	}

	fmt.Println("\nBasic example completed successfully!")
}
