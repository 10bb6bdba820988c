package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/roadreveal/pkg/io"
	"github.com/matzehuels/roadreveal/pkg/path"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
	"github.com/matzehuels/roadreveal/pkg/render/roadgraph"
)

// pathOutputs names the optional files written by the path command.
type pathOutputs struct {
	path   string
	grid   string
	graph  string
	labels bool
}

// pathCommand creates the path command.
func (c *CLI) pathCommand() *cobra.Command {
	var (
		pf  pipelineFlags
		out pathOutputs
	)

	cmd := &cobra.Command{
		Use:   "path <image|url|grid.json|grid.txt>",
		Short: "Build the reveal path and print its statistics",
		Long: `Build the reveal path through a street map and print statistics about
the grid and the path.

The input is either a map image (sampled like render does) or a grid file:
JSON {"rows":R,"cols":C,"cells":["#..#",...]} or plain text with '#' for
road cells and '.' for empty cells.

The path can be exported as JSON (-o), the sampled grid as JSON (--grid),
and the road graph with the path highlighted as a Graphviz SVG (--graph).`,
		Example: `  roadreveal path map.png
  roadreveal path grid.txt -o path.json --graph roads.svg
  roadreveal path map.png --strategy greedy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options()
			pf.apply(cmd, &opts)
			return c.runPath(cmd.Context(), args[0], opts, out, pf.noCache)
		},
	}

	pf.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&out.path, "output", "o", "", "write the path as JSON to this file")
	fs.StringVar(&out.grid, "grid", "", "write the sampled grid as JSON to this file")
	fs.StringVar(&out.graph, "graph", "", "write the road graph as SVG to this file")
	fs.BoolVar(&out.labels, "labels", false, "label road graph nodes with their coordinates")

	return cmd
}

func (c *CLI) runPath(ctx context.Context, src string, opts pipeline.Options, out pathOutputs, noCache bool) error {
	res, err := c.prepare(ctx, src, opts, noCache)
	if err != nil {
		return err
	}
	if err := path.Validate(res.Grid, res.Path.Coords); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	printSuccess("Built path through %s", src)
	printPathStats(res)

	if out.path != "" {
		if err := pkgio.ExportPath(res.Grid.Rows(), res.Grid.Cols(), res.Path.Coords, out.path); err != nil {
			return err
		}
		printFile(out.path)
	}
	if out.grid != "" {
		if err := pkgio.ExportGrid(res.Grid, out.grid); err != nil {
			return err
		}
		printFile(out.grid)
	}
	if out.graph != "" {
		dot := roadgraph.ToDOT(res.Grid, res.Path.Coords, roadgraph.Options{Labels: out.labels})
		svg, err := roadgraph.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render road graph: %w", err)
		}
		if err := os.WriteFile(out.graph, svg, 0o644); err != nil {
			return err
		}
		printFile(out.graph)
	}
	if res.Path.Len() > 0 {
		printNextStep("Render", "roadreveal render "+src)
	}
	return nil
}

// printPathStats prints the grid and search statistics of res.
func printPathStats(res *pipeline.Result) {
	p := res.Path
	printKeyValue("Grid", fmt.Sprintf("%d×%d (%d cells)", res.Stats.Rows, res.Stats.Cols, res.Grid.Len()))
	printKeyValue("Roads", strconv.Itoa(res.Stats.Roads))
	printKeyValue("Path", StyleNumber.Render(strconv.Itoa(p.Len())))
	printKeyValue("Coverage", fmt.Sprintf("%.1f%% of roads, %d/%d of component", 100*res.Stats.Coverage(), p.Len(), p.Component))
	if p.Len() > 0 {
		printKeyValue("Start", p.Coords[0].String())
		printKeyValue("End", p.Coords[p.Len()-1].String())
	}
	if p.Steps > 0 {
		printKeyValue("Steps", fmt.Sprintf("%d in %s", p.Steps, p.Elapsed.Round(time.Microsecond)))
	}
	printStats(res)
}
