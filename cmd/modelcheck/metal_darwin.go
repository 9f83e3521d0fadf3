package main

import (
	"fmt"

	"github.com/tsawler/go-metal/checkpoints"
)

// checkMetal imports the model with go-metal and lists its layers
func checkMetal(modelPath string) error {
	fmt.Println("\nAttempting to import with go-metal...")
	importer := checkpoints.NewONNXImporter()
	checkpoint, err := importer.ImportFromONNX(modelPath)
	if err != nil {
		return fmt.Errorf("failed to import ONNX model: %w", err)
	}

	fmt.Printf("✓ Imported %d layers, %d weight tensors\n", len(checkpoint.ModelSpec.Layers), len(checkpoint.Weights))
	for i, layer := range checkpoint.ModelSpec.Layers {
		fmt.Printf("  %d: %s (%s)\n", i+1, layer.Name, layer.Type)
	}
	return nil
}
