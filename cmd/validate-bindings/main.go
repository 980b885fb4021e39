package main

import (
	"fmt"
	"os"

	"github.com/craftline/webhook-gateway/bindings"
)

/* validate-bindings - Standalone CLI tool to validate bindings.yaml
 * Usage: go run cmd/validate-bindings/main.go [bindings.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	bindingsFile := "bindings.yaml"
	if len(os.Args) > 1 {
		bindingsFile = os.Args[1]
	}

	fmt.Printf("Validating bindings file: %s\n\n", bindingsFile)

	loader := bindings.NewLoader()
	if err := loader.Load(bindingsFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loaded := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d binding(s):\n", len(loaded))

	for i, b := range loaded {
		fmt.Printf("\n%d. Event: %s\n", i+1, b.Event)
		fmt.Printf("   Target URL:      %s\n", b.TargetURL)
		fmt.Printf("   Expected Status: %d\n", b.ExpectedStatus)
		if b.Description != "" {
			fmt.Printf("   Description:     %s\n", b.Description)
		}
	}

	fmt.Printf("\n✓ All bindings are valid!\n")
	os.Exit(0)
}
