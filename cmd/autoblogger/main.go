package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "autoblogger",
		Short: "Generate researched blog content on demand",
	}

	root.AddCommand(generateCMD(), serveCMD(), migrateCMD(), searchCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
