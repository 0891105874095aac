package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mhdiwe/Viral/subtitles"
)

func newSegmentCommand(root *rootOptions) *cobra.Command {
	var (
		format      string
		maxChars    int
		maxDuration float64
		minDuration float64
	)
	cmd := &cobra.Command{
		Use:   "segment <recognition.json|->",
		Short: "Group recognized words into subtitle lines",
		Long: `Reads speech recognition results (a JSON array of results with
alternatives and timed words) and prints the subtitle lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "table", "srt", "json"); err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return fmt.Errorf("read recognition results: %w", err)
			}
			var results []subtitles.RecognitionResult
			if err := json.Unmarshal(data, &results); err != nil {
				return fmt.Errorf("parse recognition results: %w", err)
			}

			cfg := root.cfg.Subtitles
			if cmd.Flags().Changed("max-chars") {
				cfg.MaxCharsPerLine = maxChars
			}
			if cmd.Flags().Changed("max-duration") {
				cfg.MaxLineDuration = maxDuration
			}
			if cmd.Flags().Changed("min-duration") {
				cfg.MinLineDuration = minDuration
			}

			segments := subtitles.Split(subtitles.Flatten(results), cfg)
			out := cmd.OutOrStdout()
			switch format {
			case "srt":
				_, err = fmt.Fprint(out, subtitles.FormatSRT(segments))
				return err
			case "json":
				if segments == nil {
					segments = []subtitles.Segment{}
				}
				return writeJSON(out, segments)
			}

			rows := make([][]string, 0, len(segments))
			for i, s := range segments {
				rows = append(rows, []string{strconv.Itoa(i + 1), seconds(s.Start), seconds(s.End), seconds(s.Duration), s.Text})
			}
			_, err = fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Dur", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return err
		},
	}
	defaults := subtitles.DefaultConfig()
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, srt, json")
	cmd.Flags().IntVar(&maxChars, "max-chars", defaults.MaxCharsPerLine, "maximum characters per line")
	cmd.Flags().Float64Var(&maxDuration, "max-duration", defaults.MaxLineDuration, "maximum seconds per line")
	cmd.Flags().Float64Var(&minDuration, "min-duration", defaults.MinLineDuration, "minimum seconds per line")
	return cmd
}
