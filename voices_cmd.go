package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/synth"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:     "voices [QUERY]",
	Short:   "List known voices",
	Long:    paragraph(fmt.Sprintf("\n%s the voices each engine offers, optionally fuzzy filtered.", keyword("List"))),
	Example: paragraph("readaloud voices\nreadaloud voices studio --engine google"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var engine synth.Engine
		if cmd.Flags().Changed("engine") {
			engine = synth.Engine(cfg.Engine)
		}

		voices := synth.Voices(engine)
		if len(args) > 0 {
			voices = filterVoices(voices, args[0])
		}
		if len(voices) == 0 {
			return fmt.Errorf("no voices match %q", strings.Join(args, " "))
		}

		w := cmd.OutOrStdout()
		for _, v := range voices {
			marker := " "
			if v.ID == cfg.Voice {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s %s %s\n",
				marker,
				runewidth.FillRight(v.ID, 20),
				runewidth.FillRight(string(v.Engine), 8),
				v.Label,
			)
		}
		return nil
	},
}

type voiceSource []synth.Voice

func (s voiceSource) String(i int) string { return s[i].ID + " " + s[i].Label }

func (s voiceSource) Len() int { return len(s) }

// filterVoices returns the voices matching query, best match first.
func filterVoices(voices []synth.Voice, query string) []synth.Voice {
	matches := fuzzy.FindFrom(query, voiceSource(voices))
	out := make([]synth.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

// resolveVoice maps a loosely typed voice name onto a known voice of the
// engine. Unknown names are passed through so that new backend voices
// keep working.
func resolveVoice(engine, voice string) string {
	if voice == "" {
		return voice
	}
	voices := synth.Voices(synth.Engine(engine))
	for _, v := range voices {
		if strings.EqualFold(v.ID, voice) {
			return v.ID
		}
	}
	if matches := filterVoices(voices, voice); len(matches) > 0 {
		log.Debug("Resolved voice", "query", voice, "voice", matches[0].ID)
		return matches[0].ID
	}
	return voice
}
