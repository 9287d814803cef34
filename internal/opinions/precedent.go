package opinions

import (
	"context"
	"fmt"
	"strings"

	"gavel/internal/corpus"
	"gavel/internal/services"
)

// renderOpinionList formats every opinion in the precedent view as the
// survey text returned by list_past_opinions.
func (a *Agent) renderOpinionList(ctx context.Context, precedents []*corpus.Case) (string, error) {
	if len(precedents) == 0 {
		return "Total past opinions: 0\n\nNo opinions have been published yet. This case will be decided on first principles.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total past opinions: %d\n", len(precedents))
	for _, kase := range precedents {
		opinion, episode, err := a.loadDecided(ctx, kase)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Docket: %s\n", kase.DocketNumber)
		fmt.Fprintf(&b, "Caption: %s\n", kase.CaseCaption)
		fmt.Fprintf(&b, "Episode: %s (%s)\n", episode.Title, episode.PubDate.Format("2006-01-02"))
		if topics := renderTopics(kase.TopicsJSON); topics != "" {
			fmt.Fprintf(&b, "Topics: %s\n", topics)
		}
		fmt.Fprintf(&b, "Fact Summary: %s\n", kase.FactSummary)
		fmt.Fprintf(&b, "Holding: %s\n", opinion.HoldingStatementHTML)
		fmt.Fprintf(&b, "Reasoning: %s\n", opinion.ReasoningSummaryHTML)
		fmt.Fprintf(&b, "Authorship: %s\n", opinion.AuthorshipHTML)
	}
	return b.String(), nil
}

// renderOpinion formats the full text of one opinion for read_past_opinion.
// Dockets outside the precedent view render as not found, including dockets
// of cases decided at or after the current case, so the response never
// reveals whether a later opinion exists.
func (a *Agent) renderOpinion(ctx context.Context, precedents []*corpus.Case, docket string) (string, error) {
	for _, kase := range precedents {
		if kase.DocketNumber != docket {
			continue
		}
		opinion, episode, err := a.loadDecided(ctx, kase)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.WriteString("=== CASE INFORMATION ===\n")
		fmt.Fprintf(&b, "Docket: %s\n", kase.DocketNumber)
		fmt.Fprintf(&b, "Caption: %s\n", kase.CaseCaption)
		fmt.Fprintf(&b, "Episode: %s (%s)\n", episode.Title, episode.PubDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "Fact Summary: %s\n", kase.FactSummary)
		fmt.Fprintf(&b, "Questions Presented: %s\n", kase.QuestionsPresentedHTML)
		if kase.ProceduralPosture != "" {
			fmt.Fprintf(&b, "Procedural Posture: %s\n", kase.ProceduralPosture)
		}
		b.WriteString("\n=== OPINION ===\n")
		fmt.Fprintf(&b, "Authorship: %s\n", opinion.AuthorshipHTML)
		fmt.Fprintf(&b, "Holding: %s\n", opinion.HoldingStatementHTML)
		fmt.Fprintf(&b, "Reasoning Summary: %s\n", opinion.ReasoningSummaryHTML)
		b.WriteString("\n--- FULL OPINION BODY ---\n")
		b.WriteString(opinion.OpinionBodyHTML)
		b.WriteString("\n")
		return b.String(), nil
	}
	return fmt.Sprintf("No opinion found for docket %s.", docket), nil
}

func (a *Agent) loadDecided(ctx context.Context, kase *corpus.Case) (*corpus.Opinion, *corpus.Episode, error) {
	opinion, err := a.store.OpinionForCase(ctx, kase.ID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "draft-opinion", "precedent", "load opinion", err)
	}
	if opinion == nil {
		return nil, nil, services.Wrap(services.ErrTransient, "draft-opinion", "precedent",
			fmt.Sprintf("case %s is decided but has no opinion", kase.DocketNumber), nil)
	}
	episode, err := a.store.EpisodeByID(ctx, kase.EpisodeID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "draft-opinion", "precedent", "load episode", err)
	}
	if episode == nil {
		return nil, nil, services.Wrap(services.ErrTransient, "draft-opinion", "precedent",
			fmt.Sprintf("case %s references missing episode %d", kase.DocketNumber, kase.EpisodeID), nil)
	}
	return opinion, episode, nil
}
