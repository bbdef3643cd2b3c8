package main

import (
	"os"

	llmembcmder "github.com/Teeticode/LLM-EMB/cmd/llmemb"
)

func main() {
	cmd := llmembcmder.NewLLMEmbCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
