package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mhdiwe/Viral/assets"
	"github.com/Mhdiwe/Viral/subtitles"
	"github.com/Mhdiwe/Viral/timeline"
)

func newLayoutCommand(root *rootOptions) *cobra.Command {
	var (
		format    string
		duration  float64
		assetURLs []string
		voiceURL  string
		musicURL  string
	)
	cmd := &cobra.Command{
		Use:   "layout <segments.json|->",
		Short: "Build a render timeline from subtitle lines and assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "table", "json"); err != nil {
				return err
			}
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return fmt.Errorf("read segments: %w", err)
			}
			var segments []subtitles.Segment
			if err := json.Unmarshal(data, &segments); err != nil {
				return fmt.Errorf("parse segments: %w", err)
			}
			visuals, err := assets.Static{}.Fetch(cmd.Context(), assets.Request{URLs: assetURLs})
			if err != nil {
				return err
			}

			opts := timeline.DefaultOptions()
			opts.Output = root.cfg.Output
			opts.MusicVolume = root.cfg.MusicVolume
			opts.VoiceURL = voiceURL
			opts.MusicURL = musicURL
			spec := timeline.Layout(segments, duration, visuals, opts)

			out := cmd.OutOrStdout()
			if format == "json" {
				return writeJSON(out, spec)
			}
			_, err = fmt.Fprintln(out, renderTable(
				[]string{"Track", "Kind", "Start", "Length", "Transition", "Source"},
				specRows(spec),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "total video duration in seconds")
	cmd.Flags().StringArrayVarP(&assetURLs, "asset", "a", nil, "visual asset URL (repeatable, in order)")
	cmd.Flags().StringVar(&voiceURL, "voice-url", "", "narration audio URL")
	cmd.Flags().StringVar(&musicURL, "music-url", "", "background music URL")
	return cmd
}

func specRows(spec timeline.RenderSpec) [][]string {
	var rows [][]string
	add := func(name string, track *timeline.Track) {
		if track == nil {
			return
		}
		for _, c := range track.Clips {
			src := c.Asset.Src
			switch c.Asset.Kind {
			case timeline.AssetColor:
				src = c.Asset.Color
			case timeline.AssetTitle:
				src = strconv.Quote(c.Asset.Text)
			}
			rows = append(rows, []string{name, string(c.Asset.Kind), seconds(c.Start), seconds(c.Length), c.Transition, src})
		}
	}
	add("visual", &spec.Visual)
	add("subtitles", spec.Subtitles)
	add("voice", &spec.Voice)
	add("music", spec.Music)
	return rows
}
