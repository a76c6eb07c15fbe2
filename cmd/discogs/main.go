package main

import (
	"context"
	"fmt"
	"os"

	"discogs/internal/config"
	"discogs/internal/shutdown"
)

func main() {
	sh := shutdown.New(context.Background())
	sh.Listen()

	app := newApp(os.Stdout, config.GetDefaultLogPath())
	sh.AddCleanup(app.close)

	err := app.Command().Run(sh.Context(), os.Args)
	sh.Shutdown()
	sh.Wait()

	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}
