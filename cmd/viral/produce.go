package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/internal/platform"
	"github.com/Mhdiwe/Viral/processing"
)

func newProduceCommand(root *rootOptions) *cobra.Command {
	var (
		script     string
		scriptFile string
		req        processing.ProduceRequest
		source     string
		backend    string
		voiceOnly  bool
	)
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Run the full pipeline for one script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptFile != "" {
				data, err := readInput(cmd.InOrStdin(), scriptFile)
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				script = string(data)
			}
			if strings.TrimSpace(script) == "" {
				return fmt.Errorf("a script is required (--script or --script-file)")
			}
			req.Voiceover.ScriptText = script
			req.Visuals.Source = config.ImageSource(source)
			req.Backend = config.RenderBackend(backend)

			ctx := cmd.Context()
			services, err := platform.NewServices(ctx, root.cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			out := cmd.OutOrStdout()
			if voiceOnly {
				vo, err := services.Pipeline.Voiceover(ctx, req.Voiceover)
				if err != nil {
					return err
				}
				return writeJSON(out, vo)
			}

			prod, err := services.Pipeline.Produce(ctx, req)
			if err != nil {
				if prod != nil {
					_ = writeJSON(cmd.ErrOrStderr(), prod)
				}
				return fmt.Errorf("%s: %w", processing.KindOf(err), err)
			}
			return writeJSON(out, prod)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&script, "script", "s", "", "narration script")
	f.StringVar(&scriptFile, "script-file", "", "read the script from a file (- for stdin)")
	f.StringVar(&req.Voiceover.VoiceID, "voice", "", "voice id (see `viral voices`)")
	f.StringVar(&req.Voiceover.LanguageCode, "language", "", "recognition language code")
	f.StringVar(&source, "image-source", "", "none, generated or stock (default from IMAGE_SOURCE)")
	f.IntVar(&req.Visuals.Count, "images", 0, "number of visuals (default from IMAGE_COUNT)")
	f.StringVar(&req.Visuals.Query, "query", "", "stock footage search terms")
	f.StringArrayVar(&req.Visuals.URLs, "asset", nil, "explicit visual URL (repeatable)")
	f.StringVar(&req.MusicURL, "music-url", "", "background music URL")
	f.StringVar(&backend, "backend", "", "local or remote (default from RENDER_BACKEND)")
	f.BoolVar(&req.Wait, "wait", true, "wait for remote renders to finish")
	f.BoolVar(&voiceOnly, "voiceover-only", false, "stop after the voiceover step")
	return cmd
}
