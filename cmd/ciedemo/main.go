// Command ciedemo renders a swatch grid through a CIE color rendering
// profile and writes the result as a PNG, exercising the installation,
// preparation, and per-color evaluation paths of package ciecolor end to
// end.
//
// Usage:
//
//	ciedemo render --profile profile.json --out swatch.png
package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/gocie/ciecolor"
)

var rootCmd = &cobra.Command{
	Use:   "ciedemo",
	Short: "Render CIE color rendering profiles to PNG swatch grids",
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

var (
	profilePath string
	outPath     string
	gridSize    int
	scaleFactor int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a swatch grid through a color rendering profile",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&profilePath, "profile", "", "path to a JSON color rendering profile (required)")
	renderCmd.Flags().StringVar(&outPath, "out", "swatch.png", "output PNG path")
	renderCmd.Flags().IntVar(&gridSize, "grid", 64, "swatch grid resolution")
	renderCmd.Flags().IntVar(&scaleFactor, "scale", 4, "upscale factor applied to the rendered grid")
	renderCmd.MarkFlagRequired("profile")
}

func runRender(cmd *cobra.Command, args []string) error {
	profile, err := LoadProfile(profilePath)
	if err != nil {
		return err
	}

	state, cs, err := BuildImager(profile)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Prepared %s (crd %s)\n", profilePath, ciecolor.CurrentColorRendering(state).ID)

	img := RenderSwatchGrid(state, cs, gridSize, scaleFactor)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Rendered %s → %s (%dx%d, scale %d)\n", profilePath, outPath, gridSize, gridSize, scaleFactor)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ciedemo: %v\n", err)
		os.Exit(1)
	}
}
