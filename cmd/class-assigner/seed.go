package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clive/class-assigner/internal/roster"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the generated startup roster as YAML",
		Long: `Generates the roster the interactive program would start with and prints it.
Pass --seed to get the same roster on every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			r := roster.Seed(cfg.Students, newRNG(cfg.Seed))
			out, err := yaml.Marshal(r.Students())
			if err != nil {
				return fmt.Errorf("encode roster: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
