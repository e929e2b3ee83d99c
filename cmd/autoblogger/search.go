package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edvm/autoblogger/config"
	"github.com/edvm/autoblogger/internal/archive"
)

func searchCMD() *cobra.Command {
	var cfgPath string
	var limit int

	var search = &cobra.Command{
		Use:   "search [query]",
		Short: "Search previously generated articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			idx, err := archive.Open(cfg.Storage.Archive.Path)
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			hits, err := idx.Search(args[0], limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, h := range hits {
				fmt.Printf("%s  %.3f  %s\n", h.ID, h.Score, h.Topic)
				for _, fragments := range h.Fragments {
					for _, f := range fragments {
						fmt.Printf("    %s\n", f)
					}
				}
			}
			return nil
		},
	}
	search.Flags().IntVar(&limit, "limit", 10, "maximum hits")
	search.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return search
}
