package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fandom-project/back-end/internal/app"
	"github.com/fandom-project/back-end/internal/repository/db"
	"github.com/fandom-project/back-end/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(22)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)

var reconcileBatch int

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recount community, member and post counters and repair drift",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		gdb, err := app.OpenDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if reconcileBatch > 0 {
			cfg.Audit.BatchSize = reconcileBatch
		}
		rep, err := service.NewCountAuditor(db.NewRepos(gdb), cfg.Audit, log).RunOnce(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), renderReport(rep))
		return err
	},
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileBatch, "batch", 0, "rows per batch (default from config)")
}

func renderReport(rep service.AuditReport) string {
	row := func(label string, v int, style lipgloss.Style) string {
		return labelStyle.Render(label) + style.Render(fmt.Sprint(v))
	}
	fixStyle := func(n int) lipgloss.Style {
		if n > 0 {
			return warningStyle
		}
		return successStyle
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Counter audit"))
	b.WriteString("\n")
	lines := []string{
		row("categories scanned", rep.Categories, lipgloss.NewStyle()),
		row("communities scanned", rep.Communities, lipgloss.NewStyle()),
		row("category counts fixed", rep.CategoryFixes, fixStyle(rep.CategoryFixes)),
		row("member counts fixed", rep.MemberFixes, fixStyle(rep.MemberFixes)),
		row("post counts fixed", rep.PostFixes, fixStyle(rep.PostFixes)),
	}
	if rep.Errors > 0 {
		lines = append(lines, row("errors", rep.Errors, dangerStyle))
	}
	lines = append(lines, labelStyle.Render("elapsed")+rep.Elapsed.Round(time.Millisecond).String())
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return boxStyle.Render(b.String())
}
