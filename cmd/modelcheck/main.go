package main

import (
	"flag"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/gazetrack/internal/face"
	"github.com/dudu/gazetrack/internal/inference"
)

func main() {
	lib := flag.String("lib", "", "Path to libonnxruntime (default: platform location)")
	metal := flag.Bool("metal", false, "Also try importing the model with go-metal")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: modelcheck [options] <landmark68.onnx>")
		fmt.Fprintln(os.Stderr, "\nThis tool checks that a landmark model loads and has the expected shape.")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	modelPath := flag.Arg(0)
	fmt.Printf("Checking model: %s\n", modelPath)

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		fmt.Printf("Error: File not found: %s\n", modelPath)
		os.Exit(1)
	}

	if err := checkORT(modelPath, *lib); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	if *metal {
		if err := checkMetal(modelPath); err != nil {
			fmt.Printf("❌ go-metal: %v\n", err)
			os.Exit(1)
		}
	}
}

func checkORT(modelPath, lib string) error {
	fmt.Println("Initializing ONNX Runtime...")
	if err := inference.Initialize(inference.Options{SharedLibraryPath: lib}); err != nil {
		return err
	}
	defer inference.Shutdown()
	fmt.Println("✓ ONNX Runtime initialized")

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return fmt.Errorf("failed to get model info: %w", err)
	}

	fmt.Printf("\nInputs (%d):\n", len(inputs))
	for _, info := range inputs {
		fmt.Printf("  %s: shape=%v, type=%v\n", info.Name, info.Dimensions, info.DataType)
	}
	fmt.Printf("\nOutputs (%d):\n", len(outputs))
	for _, info := range outputs {
		fmt.Printf("  %s: shape=%v, type=%v\n", info.Name, info.Dimensions, info.DataType)
	}

	if len(inputs) != 1 || len(outputs) < 1 {
		return fmt.Errorf("expected one input and at least one output, got %d and %d", len(inputs), len(outputs))
	}
	if n := staticSize(outputs[0].Dimensions); n != 2*face.NumLandmarks {
		return fmt.Errorf("output %s has %d values, want %d (x, y for %d landmarks)",
			outputs[0].Name, n, 2*face.NumLandmarks, face.NumLandmarks)
	}

	metadata, err := ort.GetModelMetadata(modelPath)
	if err == nil {
		fmt.Println("\nMetadata:")
		if producer, err := metadata.GetProducerName(); err == nil {
			fmt.Printf("  Producer: %s\n", producer)
		}
		if version, err := metadata.GetVersion(); err == nil {
			fmt.Printf("  Version: %d\n", version)
		}
		metadata.Destroy()
	}

	fmt.Printf("\n✅ Model usable: pass -landmarks %s to gazetrack\n", modelPath)
	return nil
}

// staticSize multiplies the fixed dimensions of a shape, skipping dynamic
// (negative) ones such as the batch axis
func staticSize(shape ort.Shape) int64 {
	n := int64(1)
	for _, d := range shape {
		if d > 0 {
			n *= d
		}
	}
	return n
}
