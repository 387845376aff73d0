package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_article/internal/engine/article"
)

func newRunCmd() *cobra.Command {
	var (
		opts  article.Options
		model string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate an illustrated article from a YouTube URL",
		Example: `  go_article run --url "https://www.youtube.com/watch?v=tAP1eZYEuKA" --prompt "写一篇技术解读"
  go_article run --url https://youtu.be/tAP1eZYEuKA --image-strategy hybrid --max-images 4 --skip-upload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), model)
			if err != nil {
				return err
			}
			defer a.Close()

			opts.Workspace = workspace
			res, err := a.Runner.Run(cmd.Context(), opts, func(stage, detail string, fraction float64) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%3.0f%%] %s: %s\n", fraction*100, stage, detail)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Done.")
			fmt.Fprintf(out, "Article: %s\n", res.ArticlePath)
			fmt.Fprintf(out, "HTML: %s\n", res.HTMLPath)
			fmt.Fprintf(out, "Manifest: %s\n", res.ManifestPath)
			fmt.Fprintf(out, "Plan: %s\n", res.PlanPath)
			fmt.Fprintf(out, "Transcript: %s (%s)\n", res.TranscriptPath, res.TranscriptStrategy)
			fmt.Fprintf(out, "Images inserted: %d\n", res.ImageCount)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.URL, "url", "", "YouTube video URL")
	f.StringVar(&opts.Instruction, "prompt", article.DefaultInstruction, "Article writing instruction")
	f.StringVar(&model, "model", "", "LLM model name (default: LLM_MODEL)")
	f.IntVar(&opts.TargetWords, "target-words", article.DefaultTargetWords, "Target article length")
	f.IntVar(&opts.MaxImages, "max-images", 0, "Max images to insert; 0 lets the model decide")
	f.StringVar(&opts.ImageStrategy, "image-strategy", string(article.ImagesVideoOnly), "video_only, hybrid or ai_only")
	f.StringVar(&opts.OSSPrefix, "oss-prefix", "wechat_article", "OSS object key prefix")
	f.StringVar(&opts.OSSStyle, "oss-style", "", "Optional OSS style name appended to image URLs")
	f.BoolVar(&opts.SkipUpload, "skip-upload", false, "Skip OSS upload and keep local image URLs")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
