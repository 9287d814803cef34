package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gavel/internal/corpus"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show corpus counts and per-case status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			cmdCtx := cmd.Context()
			out := cmd.OutOrStdout()

			episodes, err := ws.store.ListEpisodes(cmdCtx)
			if err != nil {
				return err
			}
			counts, err := ws.store.CountCasesByStatus(cmdCtx)
			if err != nil {
				return err
			}
			cases, err := ws.store.ListCasesChrono(cmdCtx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Corpus: %s\n", ws.store.Path())
			fmt.Fprintf(out, "Episodes: %d  Cases: %d\n", len(episodes), len(cases))
			fmt.Fprintf(out, "By status: %d extracted, %d drafting, %d decided, %d failed, %d review\n\n",
				counts[corpus.StatusExtracted], counts[corpus.StatusDrafting],
				counts[corpus.StatusDecided], counts[corpus.StatusFailed],
				counts[corpus.StatusReview])

			if len(cases) == 0 {
				fmt.Fprintln(out, "No cases yet.")
				return nil
			}

			// Most recent cases last in chronological order; show the tail.
			start := 0
			if limit > 0 && len(cases) > limit {
				start = len(cases) - limit
			}
			rows := make([][]string, 0, len(cases)-start)
			for _, kase := range cases[start:] {
				caption := kase.CaseCaption
				if len(caption) > 48 {
					caption = caption[:45] + "..."
				}
				note := kase.StatusMessage
				if len(note) > 40 {
					note = note[:37] + "..."
				}
				rows = append(rows, []string{
					kase.DocketNumber,
					caption,
					string(kase.Status),
					strconv.Itoa(kase.CaseSeq),
					note,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Docket", "Caption", "Status", "Seq", "Note"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum cases to list (0 for all)")
	return cmd
}
