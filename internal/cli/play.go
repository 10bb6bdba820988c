package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadreveal/pkg/audio"
	"github.com/matzehuels/roadreveal/pkg/cursor"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
)

// Cell styles
var (
	playRoadStyle = lipgloss.NewStyle().Foreground(colorDim)
	playHeadStyle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	playHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	cellRevealed = "██"
	cellRoad     = "░░"
	cellEmpty    = "  "
	cellHead     = "▓▓"
)

// playback is the part of [audio.Player] the player model uses.
type playback interface {
	Play() error
	Elapsed() time.Duration
}

// =============================================================================
// PlayModel - Interactive terminal reveal
// =============================================================================

type tickMsg time.Time

// PlayModel is the bubbletea model that reveals the artwork in the terminal.
type PlayModel struct {
	name   string
	grid   *grid.Grid
	cursor *cursor.Cursor[grid.PayloadID]
	env    *audio.Envelope
	audio  playback
	fps    float64

	// order[cell] is the position of a grid cell on the path, or -1.
	order  []int
	styles []lipgloss.Style

	level  float64
	ticks  int
	width  int
	height int
	err    error
}

// NewPlayModel creates a model over a prepared result. env and player may be
// nil; without them the cursor advances a fixed step per tick.
func NewPlayModel(name string, res *pipeline.Result, cfg cursor.Config, fps float64, env *audio.Envelope, player playback) PlayModel {
	g := res.Grid
	order := make([]int, g.Len())
	for i := range order {
		order[i] = -1
	}
	byColor := make(map[string]lipgloss.Style)
	styles := make([]lipgloss.Style, g.Len())
	for i, c := range res.Path.Coords {
		cell := g.Index(c)
		order[cell] = i
		if i >= len(res.Payloads) {
			continue
		}
		id := res.Payloads[i]
		if int(id) >= len(res.Artwork.Revealed) {
			continue
		}
		hex := res.Artwork.Revealed[id].Color
		st, ok := byColor[hex]
		if !ok {
			st = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
			byColor[hex] = st
		}
		styles[cell] = st
	}

	return PlayModel{
		name:   name,
		grid:   g,
		cursor: cursor.New(res.Payloads, cfg),
		env:    env,
		audio:  player,
		fps:    fps,
		order:  order,
		styles: styles,
	}
}

func (m PlayModel) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(time.Second)/m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// restart starts the reveal and the audio from the beginning.
func (m *PlayModel) restart() {
	m.cursor.Start()
	m.ticks = 0
	m.level = 0
	if m.audio != nil {
		m.err = m.audio.Play()
	}
}

// Init schedules the first tick. The caller starts the reveal with a
// restart before running the program.
func (m PlayModel) Init() tea.Cmd {
	return m.tick()
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space", "enter", "r":
			m.restart()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

// step advances the cursor by one frame.
func (m *PlayModel) step() {
	if !m.cursor.Running() {
		return
	}
	sig := cursor.Signal{}
	if m.env != nil {
		var (
			level float64
			ok    bool
		)
		if m.audio != nil {
			level, ok = m.env.AtTime(m.audio.Elapsed())
		} else {
			level, ok = m.env.At(m.ticks)
		}
		if !ok {
			// The track is over; hold the reveal where it is.
			m.level = 0
			return
		}
		m.level = level
		sig = cursor.Level(level)
	}
	m.ticks++
	m.cursor.Tick(sig)
}

func (m PlayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("roadreveal") + " " + StyleDim.Render(m.name))
	b.WriteString("\n\n")

	rows, cols := m.grid.Rows(), m.grid.Cols()
	if m.height > 6 {
		rows = min(rows, m.height-6)
	}
	if m.width > 2 {
		cols = min(cols, m.width/2)
	}
	revealed := m.cursor.RevealCount()
	for r := range rows {
		for c := range cols {
			b.WriteString(m.cell(grid.Coord{Row: r, Col: c}, revealed))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status(revealed))
	b.WriteString("\n")
	b.WriteString(playHelpStyle.Render("space restart  q quit"))
	return b.String()
}

func (m PlayModel) cell(c grid.Coord, revealed int) string {
	if !m.grid.Road(c) {
		return cellEmpty
	}
	i := m.grid.Index(c)
	pos := m.order[i]
	switch {
	case pos >= 0 && pos < revealed:
		return m.styles[i].Render(cellRevealed)
	case pos >= 0 && pos == revealed && m.cursor.Running():
		return playHeadStyle.Render(cellHead)
	}
	return playRoadStyle.Render(cellRoad)
}

func (m PlayModel) status(revealed int) string {
	parts := []string{
		fmt.Sprintf("reveal %s/%d", StyleNumber.Render(fmt.Sprint(revealed)), m.cursor.Len()),
		m.cursor.State().String(),
	}
	if m.env != nil {
		parts = append(parts, "loudness "+meter(m.level/m.cursor.Config().LoudnessCeiling, 10))
	}
	if m.err != nil {
		parts = append(parts, styleIconError.Render(m.err.Error()))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// meter draws a bar of width cells filled to fraction v.
func meter(v float64, width int) string {
	n := int(min(max(v, 0), 1) * float64(width))
	return strings.Repeat("▮", n) + StyleDim.Render(strings.Repeat("▯", width-n))
}

// =============================================================================
// Command
// =============================================================================

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	var (
		pf        pipelineFlags
		fps       = pipeline.DefaultFPS
		audioPath string
		headroom  = defaultHeadroom
		smoothing float64
	)

	cmd := &cobra.Command{
		Use:   "play <image|url>",
		Short: "Watch the reveal in the terminal",
		Long: `Play the reveal animation in the terminal. Road cells light up in their
artwork colours as the cursor walks the path.

With --audio the WAV file is played through the speaker and its loudness
paces the cursor. Press space to restart and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--fps must be positive")
			}
			opts := c.options()
			pf.apply(cmd, &opts)
			return c.runPlay(cmd.Context(), args[0], opts, fps, audioPath, headroom, smoothing, pf.noCache)
		},
	}

	pf.register(cmd)
	fs := cmd.Flags()
	fs.Float64Var(&fps, "fps", fps, "cursor ticks per second")
	fs.StringVar(&audioPath, "audio", "", "WAV file to play and pace the reveal with")
	fs.Float64Var(&headroom, "headroom", headroom, "fraction of the track the reveal should take at mean loudness")
	fs.Float64Var(&smoothing, "smoothing", 0, "loudness smoothing, 0..1")

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, src string, opts pipeline.Options, fps float64, audioPath string, headroom, smoothing float64, noCache bool) error {
	res, err := c.prepare(ctx, src, opts, noCache)
	if err != nil {
		return err
	}

	var (
		env    *audio.Envelope
		player playback
	)
	if audioPath != "" {
		env, err = audio.LoadWAV(audioPath, audio.Options{FPS: fps, Smoothing: smoothing})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAudio, err, "load audio %s", audioPath)
		}
		p, err := audio.OpenPlayer(audioPath)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAudio, err, "open audio %s", audioPath)
		}
		defer p.Close()
		player = p
	}

	cfg := paceCursor(opts.Cursor, len(res.Payloads), env, fps, headroom)
	model := NewPlayModel(src, res, cfg, fps, env, player)
	model.restart()
	if model.err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAudio, model.err, "play audio %s", audioPath)
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
