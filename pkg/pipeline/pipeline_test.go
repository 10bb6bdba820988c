package pipeline

import (
	"testing"
	"time"

	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/path"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"dot", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"handdrawn", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateStrategy(t *testing.T) {
	for _, s := range []string{"dfs", "greedy", ""} {
		if err := ValidateStrategy(s); err != nil {
			t.Errorf("ValidateStrategy(%q): %v", s, err)
		}
	}
	err := ValidateStrategy("astar")
	if !errors.Is(err, errors.ErrCodeInvalidStrategy) {
		t.Errorf("ValidateStrategy(astar) = %v", err)
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Sample.Spacing != 25 || o.Sample.Threshold != 240 {
		t.Errorf("sample = %+v", o.Sample)
	}
	if o.Path.Strategy != "dfs" || o.Strategy() != path.StrategyDFS {
		t.Errorf("strategy = %q", o.Path.Strategy)
	}
	if o.Render.Style != StyleHanddrawn || len(o.Render.Formats) != 1 || o.Render.Formats[0] != FormatSVG {
		t.Errorf("render = %+v", o.Render)
	}
	if o.Render.Width != 600 || o.Render.Height != 600 || o.Render.Seed != DefaultSeed {
		t.Errorf("render size/seed = %+v", o.Render)
	}
	if o.Cursor.Multiplier != 0.22 {
		t.Errorf("cursor multiplier = %v", o.Cursor.Multiplier)
	}
	if o.Logger == nil {
		t.Error("logger should default to a discard logger")
	}
}

func TestValidateOptions(t *testing.T) {
	neg := -1
	over := 1.5
	tests := []struct {
		name string
		mod  func(*Options)
		code errors.Code
	}{
		{"bad strategy", func(o *Options) { o.Path.Strategy = "bfs" }, errors.ErrCodeInvalidStrategy},
		{"negative budget", func(o *Options) { o.Path.MaxSteps = -5 }, errors.ErrCodeInvalidInput},
		{"negative timeout", func(o *Options) { o.Path.Timeout = -time.Second }, errors.ErrCodeInvalidInput},
		{"bad format", func(o *Options) { o.Render.Formats = []string{"gif"} }, errors.ErrCodeInvalidFormat},
		{"bad style", func(o *Options) { o.Render.Style = "crayon" }, errors.ErrCodeInvalidStyle},
		{"negative reveal", func(o *Options) { o.Render.Reveal = &neg }, errors.ErrCodeInvalidInput},
		{"progress above one", func(o *Options) { o.Render.Progress = &over }, errors.ErrCodeInvalidInput},
		{"negative cursor step", func(o *Options) { o.Cursor.Step = -1 }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Options
			tt.mod(&o)
			err := o.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestRevealFor(t *testing.T) {
	three, big := 3, 100
	half, zero := 0.5, 0.0
	tests := []struct {
		name string
		opts RenderOptions
		n    int
		want int
	}{
		{"default reveals all", RenderOptions{}, 10, 10},
		{"count", RenderOptions{Reveal: &three}, 10, 3},
		{"count clamped", RenderOptions{Reveal: &big}, 10, 10},
		{"progress", RenderOptions{Progress: &half}, 9, 4},
		{"zero progress", RenderOptions{Progress: &zero}, 9, 0},
		{"count wins over progress", RenderOptions{Reveal: &three, Progress: &half}, 10, 3},
		{"empty path", RenderOptions{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.RevealFor(tt.n); got != tt.want {
				t.Errorf("RevealFor(%d) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestKeyOptsTrackOptions(t *testing.T) {
	var a, b Options
	a.SetDefaults()
	b.SetDefaults()
	b.Render.Style = StyleSimple
	if a.ArtifactKeyOpts(FormatSVG, 1) == b.ArtifactKeyOpts(FormatSVG, 1) {
		t.Error("style should be part of the artifact key")
	}
	if a.ArtifactKeyOpts(FormatSVG, 1) == a.ArtifactKeyOpts(FormatSVG, 2) {
		t.Error("reveal should be part of the artifact key")
	}
	b = a
	b.Path.MaxSteps = 10
	if a.PathKeyOpts() == b.PathKeyOpts() {
		t.Error("budget should be part of the path key")
	}
}
