package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe IMAGE",
		Short: "Write a product description for an image",
		Example: `  # Describe a local photo
  idealab describe mug.jpg

  # Describe with a local Ollama model
  IDEALAB_DESCRIBE_PROVIDER=ollama idealab describe https://example.com/mug.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := newStudioClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			img, err := readImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			desc, err := client.Describe(cmd.Context(), img)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
}
