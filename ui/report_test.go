package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/trainertoe/voice/internal/cache"
	"github.com/trainertoe/voice/internal/catalog"
	"github.com/trainertoe/voice/internal/voice"
)

var plain = Config{Plain: true, LabelWidth: 22}

func TestStatsPlain(t *testing.T) {
	cost := voice.CostStats{
		APICalls:            1,
		CacheHits:           2,
		TotalRequests:       3,
		CharactersGenerated: 1234,
		HitRatePercent:      200.0 / 3,
		EstimatedCostSaved:  0.0006,
	}
	cs := cache.Stats{HotCount: 3, ColdCount: 5, TotalColdBytes: 2048, Corrupted: 1}
	h := voice.Health{
		Engine:     "mock",
		Provider:   voice.ProviderOperational,
		CacheDir:   "/tmp/voices",
		CacheReady: true,
	}

	out := Stats(plain, cost, cs, h)

	for _, want := range []string{
		"COST OPTIMIZATION",
		"66.7%",
		"2 / 3 requests",
		"1,234",
		"$0.0006",
		"2.0 kB",
		"Corrupt files removed:",
		"operational",
		"/tmp/voices",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Disk write failures") {
		t.Error("write failures should only be shown when non-zero")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain report should not contain escape sequences")
	}
}

func TestStatsUnhealthyNote(t *testing.T) {
	out := Stats(plain, voice.CostStats{}, cache.Stats{}, voice.Health{Provider: voice.ProviderUnused})
	if !strings.Contains(out, "not yet used") {
		t.Errorf("expected provider state in report:\n%s", out)
	}
	if !strings.Contains(out, "cache directory is missing") {
		t.Errorf("expected unhealthy note:\n%s", out)
	}
}

func TestPreWarmReport(t *testing.T) {
	out := PreWarm(plain, voice.PreWarmReport{
		Phrases:   110,
		Generated: 100,
		Cached:    8,
		Failed:    2,
		Elapsed:   1500 * time.Millisecond,
	})
	for _, want := range []string{"110", "100", "Failed:", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}

	out = PreWarm(plain, voice.PreWarmReport{Err: errors.New("context canceled")})
	if !strings.Contains(out, "context canceled") {
		t.Errorf("expected stop reason:\n%s", out)
	}

	out = PreWarm(plain, voice.PreWarmReport{Skipped: true})
	if !strings.Contains(out, "already pre-warmed") {
		t.Errorf("expected skipped note:\n%s", out)
	}
}

func TestCatalogAndMatches(t *testing.T) {
	out := Catalog(plain, []catalog.Category{
		{Name: "numbers", Phrases: []string{"1", "2"}},
		{Name: "chill", Description: "relaxed coach", Phrases: []string{"Nice and easy."}},
	})
	for _, want := range []string{"NUMBERS (2)", "1 | 2", "CHILL - RELAXED COACH (1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog is missing %q:\n%s", want, out)
		}
	}

	out = Matches(plain, "go", []catalog.Match{{Category: "countdowns", Phrase: "GO!"}})
	if !strings.Contains(out, "countdowns:") || !strings.Contains(out, "GO!") {
		t.Errorf("unexpected matches output:\n%s", out)
	}

	out = Matches(plain, "zzz", nil)
	if !strings.Contains(out, "no matches") {
		t.Errorf("expected empty note:\n%s", out)
	}
}

func TestStyledReportKeepsContent(t *testing.T) {
	out := Stats(Config{}, voice.CostStats{TotalRequests: 1, CacheHits: 1, HitRatePercent: 100}, cache.Stats{}, voice.Health{CacheReady: true})
	if !strings.Contains(out, "100.0%") {
		t.Errorf("styled report lost the hit rate:\n%s", out)
	}
}

func TestNoColorAcceptsAnyValue(t *testing.T) {
	for _, value := range []string{"1", "yes", "true"} {
		t.Setenv("NO_COLOR", value)

		cfg, err := env.ParseAs[Config]()
		if err != nil {
			t.Fatalf("NO_COLOR=%s: %v", value, err)
		}
		if !cfg.plain() {
			t.Errorf("NO_COLOR=%s should disable styling", value)
		}
		if cfg.LabelWidth != 22 {
			t.Errorf("LabelWidth = %d, want 22", cfg.LabelWidth)
		}
	}

	t.Setenv("NO_COLOR", "")
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.plain() {
		t.Error("empty NO_COLOR should keep styling")
	}
}
