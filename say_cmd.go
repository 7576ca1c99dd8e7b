package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trainertoe/voice/internal/voice"
)

var (
	sayRep         int
	sayTime        int
	sayMilestone   bool
	sayCompletion  bool
	sayForm        bool
	sayExercise    string
	sayPersonality string
	sayOutput      string

	sayCmd = &cobra.Command{
		Use:   "say [TEXT]",
		Short: "Speak a phrase, from the cache when possible",
		Long:  paragraph(fmt.Sprintf("\n%s a phrase as MP3. Phrases already in the cache are never sent to the provider again.", keyword("Speak"))),
		Example: paragraph(`toevoice say "Great job!" -o great.mp3
toevoice say --rep 12 -o - | mpg123 -
toevoice say --personality drill_sergeant -o yell.mp3`),
		Args: cobra.MaximumNArgs(1),
		RunE: runSay,
	}
)

var sayRouteFlags = []string{"rep", "time", "milestone", "completion", "form", "exercise", "personality"}

func init() {
	f := sayCmd.Flags()
	f.IntVarP(&sayRep, "rep", "r", 0, "speak a rep count")
	f.IntVarP(&sayTime, "time", "t", 0, "announce the seconds remaining")
	f.BoolVar(&sayMilestone, "milestone", false, "speak a random milestone phrase")
	f.BoolVar(&sayCompletion, "completion", false, "speak a random completion phrase")
	f.BoolVar(&sayForm, "form", false, "speak a random form reminder")
	f.StringVar(&sayExercise, "exercise", "", "announce an exercise")
	f.StringVarP(&sayPersonality, "personality", "p", "", "speak a random line of a coach personality")
	f.StringVarP(&sayOutput, "output", "o", "-", "write audio to this file, - for stdout")
	sayCmd.MarkFlagsMutuallyExclusive(sayRouteFlags...)
}

func runSay(cmd *cobra.Command, args []string) error {
	routed := false
	for _, name := range sayRouteFlags {
		if cmd.Flags().Changed(name) {
			routed = true
		}
	}
	if routed && len(args) > 0 {
		return errors.New("TEXT can't be combined with a phrase flag")
	}
	if !routed && len(args) == 0 {
		return errors.New("nothing to say: pass TEXT or a phrase flag")
	}

	if sayOutput == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write audio to a terminal, use --output")
	}

	p, err := newPipeline(true)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	audio, err := say(cmd, p.dispatcher, args)
	if err != nil {
		return err
	}
	p.dispatcher.LogCostSavings()

	return writeAudio(sayOutput, audio)
}

func say(cmd *cobra.Command, d *voice.Dispatcher, args []string) ([]byte, error) {
	ctx := cmd.Context()
	flags := cmd.Flags()

	switch {
	case flags.Changed("rep"):
		return d.SynthesizeRepCount(ctx, sayRep)
	case flags.Changed("time"):
		return d.SynthesizeTimeRemaining(ctx, sayTime)
	case sayMilestone:
		return d.SynthesizeMilestone(ctx)
	case sayCompletion:
		return d.SynthesizeCompletion(ctx)
	case sayForm:
		return d.SynthesizeFormReminder(ctx)
	case flags.Changed("exercise"):
		return d.SynthesizeExerciseAnnouncement(ctx, sayExercise)
	case flags.Changed("personality"):
		return d.SynthesizePersonalityLine(ctx, sayPersonality)
	default:
		return d.SynthesizeSpeech(ctx, args[0])
	}
}

func writeAudio(path string, audio []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(audio)
		return err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("unable to write audio: %w", err)
	}
	log.Info("Wrote audio", "path", path, "size", humanize.Bytes(uint64(len(audio))))
	return nil
}
