// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/ingestion"
	"github.com/poiesic/vaultindex/lifecycle"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Width(22)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)
)

// maxListedErrors caps the errors printed under a summary.
const maxListedErrors = 10

func row(label string, value any) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(fmt.Sprint(value)))
}

// renderSummary formats the statistics of one ingestion run.
func renderSummary(run *core.IngestionRun, opts ingestion.RunOptions, elapsed time.Duration) string {
	title := "Ingestion complete"
	if opts.DryRun {
		title = "Dry run complete"
	}

	rows := []string{
		titleStyle.Render(title),
		"",
		row("Collection", opts.Collection),
		row("Files processed", run.FilesProcessed),
		row("Files skipped", run.FilesSkipped),
		row("Chunks created", run.ChunksCreated),
		row("Embeddings generated", run.EmbeddingsGenerated),
		row("Elapsed", elapsed.Round(time.Millisecond)),
	}

	if len(run.Errors) == 0 {
		rows = append(rows, "", successStyle.Render("No errors"))
		return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, "", errorStyle.Render(fmt.Sprintf("%d errors", len(run.Errors))))
	for i, msg := range run.Errors {
		if i == maxListedErrors {
			rows = append(rows, warningStyle.Render(fmt.Sprintf("... and %d more", len(run.Errors)-maxListedErrors)))
			break
		}
		rows = append(rows, "  "+msg)
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderStatus formats the state of a vault's store process.
func renderStatus(status lifecycle.Status) string {
	state := errorStyle.Render("not created")
	switch {
	case status.Running:
		state = successStyle.Render("running")
	case status.Exists:
		state = warningStyle.Render("stopped")
	}

	rows := []string{
		titleStyle.Render("Vector store"),
		"",
		row("Name", status.Identity.Name),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("State"), state),
		row("Storage", status.Identity.StorageDir),
	}
	if status.ID != "" {
		rows = append(rows, row("ID", shortID(status.ID)))
	}
	if status.Ports != "" {
		rows = append(rows, row("Ports", status.Ports))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// shortID abbreviates a container id the way docker ps does.
func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
