package main

import (
	"fmt"
	"log"
	"os"

	"github.com/searchctx/queryqdrant/internal/logfilter"
)

func main() {
	log.SetOutput(os.Stderr)

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: filterlog <input_file> <output_file>")
		os.Exit(1)
	}

	f := logfilter.New()
	if err := f.FilterFile(os.Args[1], os.Args[2]); err != nil {
		log.Fatalf("filterlog: %v", err)
	}
}
