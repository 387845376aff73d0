package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_article/internal/toolutil"
)

func newTranscriptCmd() *cobra.Command {
	var (
		langs  string
		output string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "transcript [URL or video id]",
		Short: "Fetch a video transcript as [HH:MM:SS] text lines",
		Example: `  go_article transcript "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  go_article transcript tAP1eZYEuKA --langs en -o transcript.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Transcript(cmd.Context(), args[0], toolutil.NormLangs(langs))
			if err != nil {
				return err
			}

			text := res.Text() + "\n"
			if asJSON {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				text = string(data) + "\n"
			}
			if output != "" {
				return os.WriteFile(output, []byte(text), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&langs, "langs", "", "Comma-separated language preference (default: TRANSCRIPT_LANGS)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print segments and strategy as JSON")
	return cmd
}
