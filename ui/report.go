// Package ui renders toevoice reports for the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/trainertoe/voice/internal/cache"
	"github.com/trainertoe/voice/internal/catalog"
	"github.com/trainertoe/voice/internal/voice"
)

type report struct {
	cfg Config
	b   strings.Builder
}

func newReport(cfg Config) *report {
	if cfg.LabelWidth <= 0 {
		cfg.LabelWidth = 22
	}
	return &report{cfg: cfg}
}

func (r *report) title(s string) {
	if r.b.Len() > 0 {
		r.b.WriteByte('\n')
	}
	if r.cfg.plain() {
		fmt.Fprintf(&r.b, "%s\n", strings.ToUpper(s))
		return
	}
	r.b.WriteString(titleStyle.Render(s))
	r.b.WriteByte('\n')
}

func (r *report) row(label, value string, style lipgloss.Style) {
	if r.cfg.plain() {
		fmt.Fprintf(&r.b, "  %-*s %s\n", r.cfg.LabelWidth, label+":", value)
		return
	}
	fmt.Fprintf(&r.b, "  %s %s\n",
		labelStyle.Width(r.cfg.LabelWidth).Render(label+":"),
		style.Render(value))
}

func (r *report) note(s string) {
	if r.cfg.plain() {
		fmt.Fprintf(&r.b, "  %s\n", s)
		return
	}
	fmt.Fprintf(&r.b, "  %s\n", noteStyle.Render(s))
}

func (r *report) String() string {
	return r.b.String()
}

// Stats renders the cost and cache report.
func Stats(cfg Config, cost voice.CostStats, cs cache.Stats, h voice.Health) string {
	r := newReport(cfg)

	r.title("Cost optimization")
	r.row("Cache hit rate", cost.HitRate(), goodStyle)
	r.row("Cache hits", fmt.Sprintf("%s / %s requests",
		humanize.Comma(cost.CacheHits), humanize.Comma(cost.TotalRequests)), valueStyle)
	r.row("API calls", humanize.Comma(cost.APICalls), valueStyle)
	r.row("Characters generated", humanize.Comma(cost.CharactersGenerated), valueStyle)
	r.row("Estimated savings", cost.CostSaved(), goodStyle)

	r.title("Phrase cache")
	r.row("Memory items", humanize.Comma(int64(cs.HotCount)), valueStyle)
	r.row("Disk items", humanize.Comma(int64(cs.ColdCount)), valueStyle)
	r.row("Cache size", humanize.Bytes(uint64(max(cs.TotalColdBytes, 0))), valueStyle)
	r.row("Memory hits", humanize.Comma(cs.HotHits), valueStyle)
	r.row("Disk hits", humanize.Comma(cs.ColdHits), valueStyle)
	r.row("Misses", humanize.Comma(cs.Misses), valueStyle)
	r.row("Evictions", humanize.Comma(cs.Evictions), valueStyle)
	if cs.Corrupted > 0 {
		r.row("Corrupt files removed", humanize.Comma(cs.Corrupted), badStyle)
	}
	if cs.WriteFailures > 0 {
		r.row("Disk write failures", humanize.Comma(cs.WriteFailures), badStyle)
	}

	r.title("Health")
	r.row("Engine", h.Engine, valueStyle)
	r.row("Provider", h.Provider, valueStyle)
	r.row("Cache directory", h.CacheDir, statusStyle(h.CacheReady))
	r.row("Pre-warmed", yesNo(h.PreWarmed), statusStyle(h.PreWarmed))
	r.row("Heap", fmt.Sprintf("%s / %s",
		humanize.IBytes(h.HeapUsedBytes), humanize.IBytes(h.HeapTotalBytes)), valueStyle)
	if !h.Healthy() {
		r.note("cache directory is missing or not a directory")
	}

	return r.String()
}

// PreWarm renders the result of a pre-warm run.
func PreWarm(cfg Config, pr voice.PreWarmReport) string {
	r := newReport(cfg)
	r.title("Pre-warm")
	if pr.Skipped {
		r.note("cache already pre-warmed, run clear to start over")
		return r.String()
	}

	r.row("Phrases", humanize.Comma(int64(pr.Phrases)), valueStyle)
	r.row("Generated", humanize.Comma(int64(pr.Generated)), goodStyle)
	r.row("Already cached", humanize.Comma(int64(pr.Cached)), valueStyle)
	failed := valueStyle
	if pr.Failed > 0 {
		failed = badStyle
	}
	r.row("Failed", humanize.Comma(int64(pr.Failed)), failed)
	r.row("Elapsed", pr.Elapsed.Round(time.Millisecond).String(), valueStyle)
	if pr.Err != nil {
		r.row("Stopped", pr.Err.Error(), badStyle)
	}
	return r.String()
}

// Catalog renders every category with its phrases.
func Catalog(cfg Config, categories []catalog.Category) string {
	r := newReport(cfg)
	for _, c := range categories {
		title := c.Name
		if c.Description != "" {
			title += " - " + c.Description
		}
		r.title(fmt.Sprintf("%s (%d)", title, len(c.Phrases)))
		r.note(strings.Join(c.Phrases, " | "))
	}
	return r.String()
}

// Matches renders fuzzy search results, best first.
func Matches(cfg Config, query string, matches []catalog.Match) string {
	r := newReport(cfg)
	r.title(fmt.Sprintf("Phrases matching %q", query))
	if len(matches) == 0 {
		r.note("no matches")
		return r.String()
	}
	for _, m := range matches {
		r.row(m.Category, m.Phrase, valueStyle)
	}
	return r.String()
}

func statusStyle(ok bool) lipgloss.Style {
	if ok {
		return goodStyle
	}
	return badStyle
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
