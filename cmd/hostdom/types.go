package main

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hostdom/internal/config"
	"github.com/vango-dev/hostdom/internal/errors"
)

func typesCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "Print the component type table",
		Long: `Print the table mapping tag names to host view types as YAML.

The output can be edited and referenced from hostdom.json as "types".

Examples:
  hostdom types > components.yaml
  hostdom types --config=./app`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			return printTypes(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing hostdom.json")

	return cmd
}

func printTypes(w io.Writer, cfg *config.Config) error {
	table, err := cfg.LoadTypes()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return err
	}
	return enc.Close()
}

// loadConfig loads hostdom.json from dir. A missing file falls back to
// defaults unless the directory was named explicitly.
func loadConfig(dir string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, cfg.Validate()
	}
	if errors.HasCode(err, "E203") && !explicit {
		return config.New(), nil
	}
	return nil, err
}
