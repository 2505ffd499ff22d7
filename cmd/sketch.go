package cmd

import (
	"github.com/spf13/cobra"
)

func newSketchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sketch IMAGE",
		Short: "Generate a technical line drawing of a product",
		Example: `  # Writes mug-sketch.png
  idealab sketch mug.jpg

  idealab sketch mug.jpg -o mug-lineart.png`,
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

			sketch, err := client.Sketch(cmd.Context(), img)
			if err != nil {
				return err
			}

			if output == "" {
				output = outputPath(args[0], "sketch", sketch)
			}
			return writeImage(output, sketch)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the sketch")

	return cmd
}
