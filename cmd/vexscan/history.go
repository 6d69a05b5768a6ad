package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vexscan/vexscan/internal/config"
	"github.com/vexscan/vexscan/internal/database"
	"github.com/vexscan/vexscan/internal/report"
)

// NewHistoryCmd creates the history command.
// This command lists scan results stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List stored scan results",
		Long: `History lists scans saved to the local database.

Every scan is saved automatically unless --no-history was used. With no
argument, all stored scans are listed; with a URL argument, only scans
of that target are shown.

Examples:
  # List all stored scans
  vexscan history

  # List scans of a specific target
  vexscan history https://example.com

  # List all scanned targets
  vexscan history --targets

  # Show the full report of a stored scan by ID
  vexscan history --id 5

  # Output scan metadata as JSON
  vexscan history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("targets", "T", false,
		"List all scanned targets in the database")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the full stored report for a specific scan ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output scan metadata in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listTargets, err := cmd.Flags().GetBool("targets")
	if err != nil {
		return err
	}
	scanID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for the database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listTargets {
		return listScannedTargets(ctx, db)
	}

	if scanID > 0 {
		return showStoredScan(ctx, db, scanID)
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	return listScanHistory(ctx, db, target, jsonOutput)
}

// listScannedTargets lists all targets that have scan records in the database.
func listScannedTargets(ctx context.Context, db *database.ScanDB) error {
	targets, err := db.ListScannedTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No scanned targets found in the database.")
		fmt.Println("\nUse 'vexscan --url <target>' to scan a site.")
		return nil
	}

	fmt.Printf("Scanned targets (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Printf("  • %s\n", target)
	}
	fmt.Println("\nUse 'vexscan history <url>' to see scan history for a target.")

	return nil
}

// showStoredScan prints the full stored report for a scan ID.
func showStoredScan(ctx context.Context, db *database.ScanDB, scanID int64) error {
	scanReport, err := db.GetScanReportByID(ctx, scanID)
	if err != nil {
		return fmt.Errorf("failed to get scan with ID %d: %w", scanID, err)
	}
	if scanReport == nil {
		return fmt.Errorf("scan with ID %d not found", scanID)
	}

	writer := report.NewSimpleWriter(os.Stdout, report.WithShowEmpty(true))
	_, err = writer.Write(scanReport)
	return err
}

// listScanHistory lists stored scan metadata, optionally filtered by target.
func listScanHistory(ctx context.Context, db *database.ScanDB, target string, jsonOutput bool) error {
	scans, err := db.ListScans(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(scans)
	}

	if len(scans) == 0 {
		if target != "" {
			fmt.Printf("No scan history found for %s\n", target)
		} else {
			fmt.Println("No scan history found.")
		}
		fmt.Println("\nUse 'vexscan --url <target>' to scan a site.")
		return nil
	}

	if target != "" {
		fmt.Printf("Scan history for %s (%d scans):\n\n", target, len(scans))
	} else {
		fmt.Printf("Scan history (%d scans):\n\n", len(scans))
	}

	fmt.Printf("  %-6s  %-20s  %-40s  %s\n", "ID", "Date", "Target", "Findings")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, meta := range scans {
		fmt.Printf("  %-6d  %-20s  %-40s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			truncateTarget(meta.Target, 40),
			formatRiskSummary(meta.RiskSummary),
		)
	}

	fmt.Println("\nUse 'vexscan history --id <id>' to show a stored report.")

	return nil
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return "No findings"
	}
	return strings.Join(parts, " ")
}

// truncateTarget shortens a target URL for table display.
func truncateTarget(target string, limit int) string {
	if len(target) <= limit {
		return target
	}
	return target[:limit-3] + "..."
}
