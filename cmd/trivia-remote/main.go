package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"history-trivia/internal/remote"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8080", "trivia service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	flag.Parse()

	err := remote.Run(context.Background(), os.Stdin, os.Stdout, remote.Config{
		ServerURL:   *server,
		HTTPTimeout: *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
