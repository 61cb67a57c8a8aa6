package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"macrowatch/internal/store"
	"macrowatch/internal/textutil"
)

const lastErrorWidth = 48

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tracked release events and their pipeline state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			doc, err := st.Read()
			if err != nil {
				return err
			}

			if jsonOutput {
				encoded, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStatusTable(doc, time.Now().UTC()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw state document as JSON")
	return cmd
}

func renderStatusTable(doc *store.Document, now time.Time) string {
	statuses := make([]store.ReleaseStatus, len(doc.ReleaseStatus))
	copy(statuses, doc.ReleaseStatus)
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].UpdatedAt.After(statuses[j].UpdatedAt)
	})

	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		event := doc.FindEvent(status.EventID)
		name, date := "?", "?"
		if event != nil {
			name, date = event.Event, event.Date
		}
		rows = append(rows, []string{
			status.EventID,
			name,
			date,
			string(status.State),
			strconv.Itoa(status.RetryCount),
			formatNextAttempt(status.NextAttemptAt, now),
			textutil.Truncate(status.LastError, lastErrorWidth),
		})
	}
	if len(rows) == 0 {
		return "no release events tracked"
	}
	return renderTable(
		[]string{"ID", "EVENT", "DATE", "STATE", "RETRIES", "NEXT ATTEMPT", "LAST ERROR"},
		rows, 4)
}

func formatNextAttempt(at *time.Time, now time.Time) string {
	if at == nil {
		return "-"
	}
	if !at.After(now) {
		return "due"
	}
	return fmt.Sprintf("in %s", at.Sub(now).Round(time.Second))
}
