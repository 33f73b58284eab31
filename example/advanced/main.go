package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/siherrmann/ucca"
	"github.com/siherrmann/ucca/core/analysis"
	"github.com/siherrmann/ucca/core/convert"
	"github.com/siherrmann/ucca/core/pipeline"
	"github.com/siherrmann/ucca/helper"
	"github.com/siherrmann/ucca/model"
)

// annotate builds the foundational layer for "John ate because Mary cooked .":
// two linked scenes with an implicit participant and trailing punctuation.
func annotate() (*model.Passage, error) {
	p := model.NewPassage("2")
	tl, err := model.BuildTerminals(p, []model.Token{
		{Text: "John"}, {Text: "ate"}, {Text: "because"},
		{Text: "Mary"}, {Text: "cooked"}, {Text: ".", Punct: true},
	})
	if err != nil {
		return nil, err
	}

	f, err := model.NewFoundationalLayer(p)
	if err != nil {
		return nil, err
	}

	scene1, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
	if err != nil {
		return nil, err
	}
	scene2, err := f.AddFNode(f.Head(), model.EdgeTagParallelScene)
	if err != nil {
		return nil, err
	}
	linker, err := f.AddFNode(f.Head(), model.EdgeTagLinker)
	if err != nil {
		return nil, err
	}

	john, _ := tl.ByPosition(0)
	ate, _ := tl.ByPosition(1)
	because, _ := tl.ByPosition(2)
	mary, _ := tl.ByPosition(3)
	cooked, _ := tl.ByPosition(4)
	dot, _ := tl.ByPosition(5)

	participant1, err := f.AddFNode(scene1, model.EdgeTagParticipant)
	if err != nil {
		return nil, err
	}
	process1, err := f.AddFNode(scene1, model.EdgeTagProcess)
	if err != nil {
		return nil, err
	}
	participant2, err := f.AddFNode(scene2, model.EdgeTagParticipant)
	if err != nil {
		return nil, err
	}
	process2, err := f.AddFNode(scene2, model.EdgeTagProcess)
	if err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		parent   *model.FoundationalNode
		terminal *model.Terminal
	}{
		{participant1, john}, {process1, ate}, {linker, because},
		{participant2, mary}, {process2, cooked},
	} {
		if _, err := f.AddTerminal(pair.parent, pair.terminal); err != nil {
			return nil, err
		}
	}
	if _, err := f.AddPunct(scene2, dot); err != nil {
		return nil, err
	}

	// What Mary cooked stays unexpressed
	if _, err := f.AttachImplicit(scene2, model.EdgeTagParticipant); err != nil {
		return nil, err
	}

	// The linker relates the two scenes
	if _, err := f.CreateLinkage(linker, scene1, scene2); err != nil {
		return nil, err
	}

	return p, nil
}

func main() {
	passage, err := annotate()
	if err != nil {
		log.Fatalf("Failed to annotate passage: %v", err)
	}

	// Walk the scenes in document order
	f, _ := model.FoundationalLayerOf(passage)
	fmt.Println("Scenes:")
	for scene := range f.Scenes() {
		texts := []string{}
		for _, terminal := range scene.YieldTerminals() {
			texts = append(texts, terminal.Text())
		}
		fmt.Printf("  %s: %s\n", scene.ID(), strings.Join(texts, " "))
	}

	// Sentence boundaries from the annotation
	ends := analysis.BreakToSentences(passage)
	fmt.Printf("Sentence end positions: %v\n", ends)

	// Serialize to the standard XML format
	data, err := convert.ToStandard(passage)
	if err != nil {
		log.Fatalf("Failed to serialize passage: %v", err)
	}
	fmt.Printf("\nStandard XML (%d bytes):\n%s\n", len(data), data)

	// Store the annotated passage and search its units
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

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

	// A deterministic embedder keeps the example self-contained.
	// Use UseDefaultPipeline for real embeddings.
	embedder := func(text string) ([]float32, error) {
		embedding := make([]float32, 384)
		for i := range embedding {
			embedding[i] = float32((len(text)+i)%100) / 100.0
		}
		return embedding, nil
	}
	c.SetPipeline(pipeline.NewPipeline(pipeline.DefaultTokenizer(), embedder))

	record, unitCount, err := c.InsertPassage(passage, model.Metadata{"corpus": "example"})
	if err != nil {
		log.Fatalf("Failed to insert passage: %v", err)
	}
	fmt.Printf("Stored passage %s with %d units\n", record.RID, unitCount)

	// Retrieve participant units only
	config := model.DefaultQueryConfig()
	config.TopK = 10
	config.SimilarityThreshold = 0.0
	config.Categories = []string{model.EdgeTagParticipant}

	results, err := c.HybridSearchUnits(context.Background(), "Mary", &config)
	if err != nil {
		log.Fatalf("Failed to search units: %v", err)
	}

	fmt.Printf("\nFound %d participant units:\n", len(results))
	for _, unit := range results {
		fmt.Printf("  %s [%s]: %q (%s)\n", unit.NodeID, unit.Category, unit.Text, unit.RetrievalMethod)
	}

	fmt.Println("\nAdvanced example completed successfully!")
}
