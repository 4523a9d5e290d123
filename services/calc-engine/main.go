package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

type FSAPData struct {
	// Simple structure for demo; would be fully fledged in production
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	Equity      float64 `json:"equity"`
}

func main() {
	mode := flag.String("mode", "calculate", "Mode: check or calculate")
	dataStr := flag.String("data", "", "JSON data payload")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	var data FSAPData
	if err := json.Unmarshal([]byte(*dataStr), &data); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}

	switch *mode {
	case "check":
		runChecks(data)
	case "calculate":
		runCalculations(data)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
	}
}

func runChecks(data FSAPData) {
	diff := data.Assets - (data.Liabilities + data.Equity)
	if diff == 0 {
		fmt.Println("Success: Assets = L + E")
	} else {
		fmt.Printf("Error: Accounting Identity Imbalance (Diff: %f)\n", diff)
	}
}

func runCalculations(data FSAPData) {
	// Example calculation logic
	fmt.Println("Calculations complete.")
}
