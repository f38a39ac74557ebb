package main

import (
	"log"
	"os"

	"github.com/searchctx/queryqdrant/internal/logscan"
)

func main() {
	log.SetOutput(os.Stderr)

	files := os.Args[1:]
	if len(files) == 0 {
		files = []string{"output.log", "error.log"}
	}

	s := logscan.New()
	for _, path := range files {
		if err := s.ScanFile(path, os.Stdout); err != nil {
			log.Printf("scanlog: %v", err)
		}
	}
}
