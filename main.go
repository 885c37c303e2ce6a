package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := NewApp()
	rootCmd := SetupCommands(app)

	err := rootCmd.ExecuteContext(context.Background())
	if closeErr := app.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
