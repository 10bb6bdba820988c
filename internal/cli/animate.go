package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/roadreveal/pkg/audio"
	"github.com/matzehuels/roadreveal/pkg/cursor"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
)

const (
	// defaultHeadroom leaves room for loud passages when fitting the base
	// speed to an audio track.
	defaultHeadroom = 0.8

	timelineFile = "timeline.json"
)

type animateFlags struct {
	outDir    string
	format    string
	fps       float64
	every     int
	maxFrames int
	audio     string
	headroom  float64
	smoothing float64
}

// timelineFrame is one exported frame.
type timelineFrame struct {
	Index    int     `json:"index"`
	Tick     int     `json:"tick"`
	TimeMS   int64   `json:"time_ms"`
	Reveal   int     `json:"reveal"`
	Loudness float64 `json:"loudness"`
	File     string  `json:"file"`
}

// timeline is written next to the frames.
type timeline struct {
	Source     string          `json:"source"`
	FPS        float64         `json:"fps"`
	Every      int             `json:"every"`
	PathLength int             `json:"path_length"`
	Audio      string          `json:"audio,omitempty"`
	Cursor     cursor.Config   `json:"cursor"`
	Frames     []timelineFrame `json:"frames"`
}

// animateCommand creates the animate command.
func (c *CLI) animateCommand() *cobra.Command {
	var (
		pf pipelineFlags
		af = animateFlags{
			outDir:   "frames",
			format:   pipeline.FormatPNG,
			fps:      pipeline.DefaultFPS,
			every:    1,
			headroom: defaultHeadroom,
		}
	)

	cmd := &cobra.Command{
		Use:   "animate <image|url>",
		Short: "Export the reveal animation as numbered frames",
		Long: `Drive the reveal cursor over the path at --fps ticks per second and write
every --every-th frame to --out-dir, together with timeline.json mapping
frames to reveal counts.

Without audio the cursor advances a fixed step per tick. With --audio the
cursor is paced by the loudness of the WAV file and its base speed is fitted
so that the reveal ends near the end of the track; the decorative panels
follow the loudness. The run stops when the reveal completes, when the audio
ends or after --max-frames frames.`,
		Example: `  roadreveal animate map.png --out-dir frames
  roadreveal animate map.png --audio song.wav --every 2 --format svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if af.format != pipeline.FormatPNG && af.format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid frame format: %q (must be png or svg)", af.format)
			}
			if af.fps <= 0 || af.every <= 0 || af.maxFrames < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--fps and --every must be positive and --max-frames non-negative")
			}
			opts := c.options()
			pf.apply(cmd, &opts)
			return c.runAnimate(cmd.Context(), args[0], opts, af, pf.noCache)
		},
	}

	pf.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&af.outDir, "out-dir", af.outDir, "directory for frames and timeline.json")
	fs.StringVar(&af.format, "format", af.format, "frame format: png (default), svg")
	fs.Float64Var(&af.fps, "fps", af.fps, "cursor ticks per second")
	fs.IntVar(&af.every, "every", af.every, "write every n-th tick")
	fs.IntVar(&af.maxFrames, "max-frames", 0, "stop after this many frames (0 = until complete)")
	fs.StringVar(&af.audio, "audio", "", "WAV file pacing the reveal")
	fs.Float64Var(&af.headroom, "headroom", af.headroom, "fraction of the track the reveal should take at mean loudness")
	fs.Float64Var(&af.smoothing, "smoothing", 0, "loudness smoothing, 0..1")

	return cmd
}

func (c *CLI) runAnimate(ctx context.Context, src string, opts pipeline.Options, af animateFlags, noCache bool) error {
	res, err := c.prepare(ctx, src, opts, noCache)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)

	var env *audio.Envelope
	if af.audio != "" {
		env, err = audio.LoadWAV(af.audio, audio.Options{FPS: af.fps, Smoothing: af.smoothing})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAudio, err, "load audio %s", af.audio)
		}
		c.Logger.Info("analysed audio",
			"duration", env.Duration.Round(time.Millisecond),
			"frames", env.Len(),
			"mean", fmt.Sprintf("%.3f", env.Mean()))
	}

	cfg := paceCursor(opts.Cursor, len(res.Payloads), env, af.fps, af.headroom)
	cur := cursor.New(res.Payloads, cfg)
	frames := buildTimeline(cur, env, af.fps, af.every, af.maxFrames)
	c.Logger.Info("computed timeline", "frames", len(frames), "final_reveal", frames[len(frames)-1].Reveal)

	if err := os.MkdirAll(af.outDir, 0o755); err != nil {
		return err
	}
	if err := renderFrames(ctx, res, frames, af.format, af.outDir, opts.Render); err != nil {
		return err
	}

	tl := timeline{
		Source:     src,
		FPS:        af.fps,
		Every:      af.every,
		PathLength: len(res.Payloads),
		Audio:      af.audio,
		Cursor:     cfg,
		Frames:     frames,
	}
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return err
	}
	tlPath := filepath.Join(af.outDir, timelineFile)
	if err := os.WriteFile(tlPath, data, 0o644); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Exported %d frames", len(frames)))
	printSuccess("Animated %s", src)
	printFile(af.outDir)
	printFile(tlPath)
	printStats(res)
	return nil
}

// paceCursor fits the base speed of cfg to the audio track, if any.
func paceCursor(cfg cursor.Config, pathLen int, env *audio.Envelope, fps, headroom float64) cursor.Config {
	cfg = cfg.WithDefaults()
	if env == nil {
		return cfg
	}
	if speed := cursor.FitBaseSpeed(pathLen, env.Duration, fps, headroom, cfg.Multiplier); speed > 0 {
		cfg.BaseSpeed = speed
	}
	return cfg
}

// buildTimeline starts cur and ticks it until the reveal completes, the
// envelope runs out or maxFrames frames were recorded. Every every-th tick is
// recorded, and the last tick always is.
func buildTimeline(cur *cursor.Cursor[grid.PayloadID], env *audio.Envelope, fps float64, every, maxFrames int) []timelineFrame {
	cur.Start()
	var frames []timelineFrame
	record := func(tick int, level float64) {
		frames = append(frames, timelineFrame{
			Index:    len(frames),
			Tick:     tick,
			TimeMS:   int64(float64(tick) / fps * 1000),
			Reveal:   cur.RevealCount(),
			Loudness: level,
		})
	}

	level := 0.0
	for tick := 0; ; tick++ {
		sig := cursor.Signal{}
		if env != nil {
			l, ok := env.At(tick)
			if !ok {
				record(tick, level)
				break
			}
			level = l
			sig = cursor.Level(l)
		}

		done := !cur.Running()
		if tick%every == 0 || done {
			record(tick, level)
		}
		if done || (maxFrames > 0 && len(frames) >= maxFrames) {
			break
		}
		cur.Tick(sig)
	}

	for i := range frames {
		frames[i].File = fmt.Sprintf("frame_%05d", i)
	}
	return frames
}

// renderFrames draws every frame in parallel and writes it to dir.
func renderFrames(ctx context.Context, res *pipeline.Result, frames []timelineFrame, format, dir string, opts pipeline.RenderOptions) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range frames {
		frames[i].File += "." + format
		f := frames[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := pipeline.Render(ctx, res, format, f.Reveal, f.Loudness, opts)
			if err != nil {
				return fmt.Errorf("frame %d: %w", f.Index, err)
			}
			return os.WriteFile(filepath.Join(dir, f.File), data, 0o644)
		})
	}
	return g.Wait()
}
