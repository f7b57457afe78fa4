// Command jsonflow runs a configured record pipeline over JSONL input, a
// single text, or a directory of images, and writes the results as JSONL.
//
// Usage:
//
//	jsonflow -c pipeline.yaml -i questions.jsonl -o answers.jsonl
//	jsonflow -c pipeline.yaml -i "What is AI?"
//	jsonflow -c caption.yaml --image-dir ./photos --num-samples 20
//
// Exit status is 0 when every record succeeded, 1 when some records failed
// or the run was interrupted, and 2 on configuration or fatal errors.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/kbukum/jsonflow/llm/ollama"
	_ "github.com/kbukum/jsonflow/llm/openai"
)

const (
	exitOK      = 0
	exitPartial = 1
	exitFatal   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
