package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tunelar/web/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "tunelar: %v\n", err)
		os.Exit(1)
	}
}
