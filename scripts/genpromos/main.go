// Command genpromos writes a sample promo rule file for local
// development, in the format the promo file loader reads.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type rule struct {
	Code  string  `json:"code"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

func main() {
	outPath := "data/promos/rules.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	rules := []rule{
		{Code: "SAVE10", Kind: "percent", Value: 0.10},
		{Code: "READER15", Kind: "percent", Value: 0.15},
		{Code: "WELCOME5", Kind: "flat", Value: 5.00},
		{Code: "BOOKWORM20", Kind: "percent", Value: 0.20},
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal rules: %v", err)
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", outPath, err)
	}

	fmt.Printf("Wrote %d promo rules to %s\n", len(rules), outPath)
}
