package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

// Builder renders the final report artifacts from the labeled dataset.
// Chat and notifier are optional collaborators; their failures degrade
// to a report without the extras, never to a run failure.
type Builder struct {
	cfg      config.ReportConfig
	chat     ports.ChatClient
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewBuilder wires the report stage.
func NewBuilder(cfg config.ReportConfig, chat ports.ChatClient, notifier ports.Notifier, logger *slog.Logger) *Builder {
	return &Builder{cfg: cfg, chat: chat, notifier: notifier, logger: logger}
}

// Build writes the markdown report and workbook, then publishes the
// digest when a notifier is configured.
func (b *Builder) Build(ctx context.Context, reviews []domain.ThemedReview, load ports.LoadReport) error {
	summary := Summarize(reviews)

	executive := b.executiveSummary(ctx, summary)

	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	markdownPath := filepath.Join(b.cfg.OutputDir, "final_report.md")
	if err := os.WriteFile(markdownPath, []byte(RenderMarkdown(summary, executive)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	if b.cfg.Workbook {
		workbookPath := filepath.Join(b.cfg.OutputDir, "analysis.xlsx")
		if err := WriteWorkbook(workbookPath, summary, reviews); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
	}

	if b.notifier != nil {
		digest := Digest(summary, load.Path, load.Inserted, load.Skipped)
		if err := b.notifier.PublishDigest(ctx, digest); err != nil && b.logger != nil {
			b.logger.Warn("digest delivery failed", "error", err)
		}
	}

	if b.logger != nil {
		b.logger.Info("report written", "dir", b.cfg.OutputDir, "banks", len(summary.Banks))
	}
	return nil
}

// executiveSummary asks the chat model to narrate the aggregates.
// Absent or failing chat clients leave the section out.
func (b *Builder) executiveSummary(ctx context.Context, summary Summary) string {
	if b.chat == nil {
		return ""
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("marshal summary for chat", "error", err)
		}
		return ""
	}

	text, err := b.chat.Complete(ctx, payload)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("executive summary generation failed", "error", err)
		}
		return ""
	}
	return text
}
