package main

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_article/internal/articleserver"
	"github.com/anatolykoptev/go_article/internal/engine"
	"github.com/anatolykoptev/go_article/internal/engine/article"
)

func newServeCmd() *cobra.Command {
	port := env.Str("MCP_PORT", "8893")
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			slog.Info("starting go_article", slog.String("port", port), slog.String("workspace", a.Workspace))

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "go_article",
				Version: version,
			}, nil)

			articleserver.New(a, articleserver.Defaults{
				Instruction:   env.Str("ARTICLE_PROMPT", article.DefaultInstruction),
				TargetWords:   env.Int("ARTICLE_TARGET_WORDS", article.DefaultTargetWords),
				MaxImages:     env.Int("ARTICLE_MAX_IMAGES", 0),
				ImageStrategy: env.Str("ARTICLE_IMAGE_STRATEGY", string(article.ImagesVideoOnly)),
				OSSPrefix:     env.Str("OSS_PREFIX", "wechat_article"),
				OSSStyle:      env.Str("OSS_STYLE", ""),
			}).RegisterTools(server)
			slog.Info("tools registered", slog.Int("count", articleserver.ToolCount))

			return mcpserver.Run(server, mcpserver.Config{
				Name:         "go_article",
				Version:      version,
				Port:         port,
				WriteTimeout: 30 * time.Minute,
				Metrics:      engine.FormatMetrics,
			})
		},
	}
	cmd.Flags().StringVar(&port, "port", port, "HTTP port (default: MCP_PORT)")
	return cmd
}
