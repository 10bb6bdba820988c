package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadreveal/pkg/httputil"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
)

// renderFlags holds the frame selection and drawing flags of render.
type renderFlags struct {
	formats  string
	output   string
	reveal   int
	progress float64
	loudness float64
	noPanels bool
	gallery  bool
	scale    float64
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		pf pipelineFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render <image|url>",
		Short: "Render an artwork frame from a street map",
		Long: `Render an artwork frame from a street map image.

The image is sampled into a road grid, one long path is built through the
road network and the artwork is drawn with the first --reveal blocks of the
path revealed (the whole path by default).

Formats: svg, png, json (block model) and dot (road graph for Graphviz).
Results of every stage are cached locally for faster subsequent runs.`,
		Example: `  roadreveal render map.png
  roadreveal render map.png -f svg,png -o out/map --reveal 120
  roadreveal render https://example.com/district.png --progress 0.5 --style simple`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options()
			pf.apply(cmd, &opts)
			rf.apply(cmd, &opts)
			return c.runRender(cmd.Context(), args[0], opts, rf.output, pf.noCache)
		},
	}

	pf.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&rf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	fs.IntVar(&rf.reveal, "reveal", 0, "number of revealed blocks (default: whole path)")
	fs.Float64Var(&rf.progress, "progress", 0, "fraction of the path to reveal, 0..1 (alternative to --reveal)")
	fs.Float64Var(&rf.loudness, "loudness", 0, "loudness driving the decorative panels, 0..1")
	fs.BoolVar(&rf.noPanels, "no-panels", false, "omit the decorative panels")
	fs.BoolVar(&rf.gallery, "gallery", false, "hang the artwork in a gallery scene")
	fs.Float64Var(&rf.scale, "scale", 0, "PNG scale factor (default 1)")
	cmd.MarkFlagsMutuallyExclusive("reveal", "progress")

	return cmd
}

func (rf *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("format") || len(opts.Render.Formats) == 0 {
		opts.Render.Formats = parseFormats(rf.formats)
	}
	if fs.Changed("reveal") {
		n := rf.reveal
		opts.Render.Reveal, opts.Render.Progress = &n, nil
	}
	if fs.Changed("progress") {
		p := rf.progress
		opts.Render.Reveal, opts.Render.Progress = nil, &p
	}
	if fs.Changed("loudness") {
		opts.Render.Loudness = rf.loudness
	}
	if fs.Changed("no-panels") {
		opts.Render.NoPanels = rf.noPanels
	}
	if fs.Changed("gallery") {
		opts.Render.Gallery = rf.gallery
	}
	if fs.Changed("scale") {
		opts.Render.Scale = rf.scale
	}
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, src string, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	in, err := runner.Load(ctx, src)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", in.Name))
	spinner.Start()
	res, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(res.Artifacts, opts.Render.Formats, output, in.Name)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", in.Name)
	for _, p := range paths {
		printFile(p)
	}
	printStats(res)
	if !httputil.IsURL(src) {
		printNextStep("Animate", "roadreveal animate "+src)
	}
	return nil
}

// =============================================================================
// Output Paths
// =============================================================================

// outputPaths maps each format to the file it is written to. A single format
// with an explicit output path is written there as is; otherwise output (or
// the input name, stripped of directories and extension) is used as a base
// and the format is appended as extension.
func outputPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input names.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	name := input
	if u, err := url.Parse(input); err == nil && u.Scheme != "" {
		name = u.Path
	}
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "artwork"
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// writeArtifacts writes every rendered format and returns the written paths
// in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := outputPaths(formats, output, input)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		p := paths[f]
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, err
			}
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
