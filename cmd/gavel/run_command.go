package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every pipeline stage in order",
		Long: `Run executes all stages in order: ingest, fetch-audio, locate-segments,
transcribe, extract-cases, then opinion drafting and citation extraction for
each pending case in strict chronological order, then export. The run holds
an exclusive lock so only one pipeline writes at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			out := cmd.OutOrStdout()
			for {
				summary, err := ws.pipeline.Run(cmd.Context())
				if err != nil {
					if !watch || errors.Is(err, context.Canceled) {
						return err
					}
					fmt.Fprintf(out, "Run failed: %v\n", err)
				} else {
					fmt.Fprintf(out, "Run %s: %d opinion(s) drafted, %d case(s) failed, %d file(s) exported\n",
						summary.RunID, summary.OpinionsDrafted, summary.CasesFailed, summary.Export.Written)
				}
				if !watch {
					return nil
				}

				interval := time.Duration(ws.cfg.Workflow.WatchIntervalSeconds) * time.Second
				if err != nil {
					interval = time.Duration(ws.cfg.Workflow.ErrorRetrySeconds) * time.Second
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(interval):
				}
			}
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running on an interval")
	return cmd
}
