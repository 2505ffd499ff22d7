package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/session"
)

func newEditCmd() *cobra.Command {
	var (
		prompt string
		with   []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "edit IMAGE",
		Short: "Edit a product image with a text instruction",
		Example: `  # Recolour a product
  idealab edit mug.jpg --prompt "make it red"

  # Combine with reference images
  idealab edit mug.jpg --with handle.png --with pattern.png --prompt "use this handle and pattern" -o mug-v2.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" && len(with) == 0 {
				return session.ErrEmptyMessage
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := newStudioClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			product, err := readImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			aux := make([]images.Asset, 0, len(with))
			for _, path := range with {
				img, err := readImage(cmd.Context(), path)
				if err != nil {
					return err
				}
				aux = append(aux, img)
			}

			res, err := client.EditImage(cmd.Context(), product, aux, prompt)
			if err != nil {
				return err
			}

			if output == "" {
				output = outputPath(args[0], "edited", res.Image)
			}
			if err := writeImage(output, res.Image); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Edit instruction")
	cmd.Flags().StringArrayVar(&with, "with", nil, "Auxiliary image to combine (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the edited image")

	return cmd
}
