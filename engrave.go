// Package engrave lays out music for drawing. Feed it a logical score, or
// MML text, and it returns exact geometry for staves, notes, stems, beams,
// ledgers, accidentals, dots and ties.
package engrave

import (
	"fmt"
	"log/slog"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	intmml "github.com/cbegin/mmlengrave-go/internal/mml"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

type (
	Config        = layout.Config
	Layout        = layout.Score
	LogicalScore  = score.LogicalScore
	ImportOptions = score.ImportOptions
)

type Option func(*engraverConfig)

type engraverConfig struct {
	layout layout.Config
	parser intmml.ParserConfig
	imp    score.ImportOptions
	logger *slog.Logger
}

func defaultEngraverConfig() engraverConfig {
	return engraverConfig{
		layout: layout.DefaultConfig(),
		parser: intmml.DefaultParserConfig(),
		imp:    score.DefaultImportOptions(),
	}
}

// DefaultConfig returns the layout defaults for use with WithConfig.
func DefaultConfig() Config { return layout.DefaultConfig() }

func WithConfig(cfg Config) Option {
	return func(c *engraverConfig) {
		c.layout = cfg
	}
}

// WithLogger routes skipped-event and degraded-feature records to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *engraverConfig) {
		c.logger = l
	}
}

func WithImportOptions(opts ImportOptions) Option {
	return func(c *engraverConfig) {
		c.imp = opts
	}
}

// WithResolution sets the MML ticks per whole note.
func WithResolution(ticks int) Option {
	return func(c *engraverConfig) {
		c.parser.Resolution = ticks
	}
}

type Engraver struct {
	cfg    engraverConfig
	parser *intmml.Parser
}

func NewEngraver(opts ...Option) *Engraver {
	cfg := defaultEngraverConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.layout = cfg.layout.Normalize()
	return &Engraver{cfg: cfg, parser: intmml.NewParser(cfg.parser)}
}

// Config is the normalized layout configuration in use.
func (e *Engraver) Config() Config { return e.cfg.layout }

// Layout is safe to call from several goroutines.
func (e *Engraver) Layout(ls *LogicalScore) *Layout {
	return layout.Layout(ls, e.cfg.layout, e.cfg.logger)
}

// Import parses MML into a logical score without laying it out.
func (e *Engraver) Import(mmlText string) (*LogicalScore, error) {
	parsed, err := e.parser.Parse(mmlText)
	if err != nil {
		return nil, fmt.Errorf("parse mml: %w", err)
	}
	ls, err := score.FromMML(parsed, e.cfg.imp)
	if err != nil {
		return nil, fmt.Errorf("import mml: %w", err)
	}
	return ls, nil
}

func (e *Engraver) LayoutMML(mmlText string) (*Layout, error) {
	ls, err := e.Import(mmlText)
	if err != nil {
		return nil, err
	}
	return e.Layout(ls), nil
}
