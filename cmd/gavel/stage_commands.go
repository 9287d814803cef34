package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Refresh the episode catalog from the podcast feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			result, err := ws.pipeline.IngestFeed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feed: %d seen, %d created, %d updated, %d unchanged\n",
				result.Seen, result.Created, result.Updated, result.Skipped)
			return nil
		},
	}
}

func newFetchAudioCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-audio",
		Short: "Download episode audio that is not yet on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			fetched, err := ws.pipeline.FetchAudio(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d audio file(s)\n", fetched)
			return nil
		},
	}
}

func newLocateSegmentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "locate-segments",
		Short: "Detect the court segment in episodes that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			located, err := ws.pipeline.LocateSegments(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Located %d segment(s)\n", located)
			return nil
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe located segments that lack transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			created, err := ws.pipeline.Transcribe(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d transcript(s)\n", created)
			return nil
		},
	}
}

func newExtractCasesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract-cases",
		Short: "Extract structured cases from transcribed segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			created, err := ws.pipeline.ExtractCases(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d case(s)\n", created)
			return nil
		},
	}
}

func newDraftOpinionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "draft-opinions",
		Short: "Draft opinions for pending cases in chronological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			summary, err := ws.pipeline.DraftOpinions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Drafted %d opinion(s), %d case(s) failed, %d citation edge(s)\n",
				summary.OpinionsDrafted, summary.CasesFailed, summary.CitationsCreated)
			return nil
		},
	}
}

func newExtractCitationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract-citations",
		Short: "Recompute citation edges for every decided case",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			total, err := ws.pipeline.ExtractCitations(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Materialized %d citation edge(s)\n", total)
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Project the decided corpus to static JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			summary, err := ws.pipeline.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d opinion(s), wrote %d file(s) to %s\n",
				summary.Opinions, summary.Written, ws.cfg.Paths.ExportDir)
			return nil
		},
	}
}
