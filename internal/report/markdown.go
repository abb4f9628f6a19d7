package report

import (
	"fmt"
	"strings"

	"github.com/trendscout-agent/internal/models"
)

// RenderArtifact renders one platform run artifact as a markdown
// report for human review
func RenderArtifact(a *models.Artifact) string {
	var b strings.Builder
	md := a.Metadata

	fmt.Fprintf(&b, "# %s outlier report\n\n", strings.ToUpper(string(md.Platform)))
	fmt.Fprintf(&b, "Generated: %s\n\n", md.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Run summary\n\n")
	fmt.Fprintf(&b, "- Records analyzed: %d\n", md.TotalRecords)
	fmt.Fprintf(&b, "- Outliers: %d\n", md.OutlierCount)
	fmt.Fprintf(&b, "- Threshold multiplier: %.2f\n", md.ThresholdMultiplier)
	if md.Degenerate {
		b.WriteString("- Note: too few or identical engagement rates; the outlier test was not applicable and no records were flagged\n")
	} else if md.Threshold > 0 {
		fmt.Fprintf(&b, "- Threshold: %.4f (mean %.4f, stddev %.4f)\n", md.Threshold, md.Mean, md.StdDev)
	}
	if len(md.Accounts) > 0 {
		fmt.Fprintf(&b, "- Accounts: %s\n", strings.Join(md.Accounts, ", "))
	}
	b.WriteString("\n")

	if len(a.Outliers) > 0 {
		b.WriteString("## Outliers\n\n")
		b.WriteString("| # | Author | Score | Rate | URL |\n")
		b.WriteString("|---|--------|-------|------|-----|\n")
		for i, rec := range a.Outliers {
			fmt.Fprintf(&b, "| %d | %s | %.1f | %.2f%% | %s |\n",
				i+1, rec.Author, rec.EngagementScore, rec.EngagementRate, rec.URL)
		}
		b.WriteString("\n")

		for _, rec := range a.Outliers {
			if rec.VideoAnalysis == nil {
				continue
			}
			fmt.Fprintf(&b, "### Why it worked: %s\n\n", rec.URL)
			fmt.Fprintf(&b, "- Hook: %s\n", rec.VideoAnalysis.Hook)
			fmt.Fprintf(&b, "- Structure: %s\n", rec.VideoAnalysis.ContentStructure)
			fmt.Fprintf(&b, "- Delivery: %s\n", rec.VideoAnalysis.DeliveryStyle)
			fmt.Fprintf(&b, "- CTA: %s\n\n", rec.VideoAnalysis.CTA)
		}
	}

	writePatterns(&b, a.Patterns)

	writeTopicTable(&b, "Top hashtags", a.Topics.Hashtags)
	writeTopicTable(&b, "Top keywords", a.Topics.Keywords)
	writeTopicTable(&b, "Top mentions", a.Topics.Mentions)

	return b.String()
}

func writePatterns(b *strings.Builder, p *models.ContentPatterns) {
	if p == nil {
		return
	}
	b.WriteString("## Content patterns\n\n")
	writePatternRow(b, "Has media", p.HasMedia)
	writePatternRow(b, "Has link", p.HasLink)
	writePatternRow(b, "Asks a question", p.Question)
	writePatternRow(b, "List format", p.ListFormat)
	for _, bucket := range []string{"short", "medium", "long"} {
		if stat, ok := p.Length[bucket]; ok {
			writePatternRow(b, fmt.Sprintf("Length: %s", bucket), stat)
		}
	}
	b.WriteString("\n")
}

func writePatternRow(b *strings.Builder, label string, stat models.PatternStat) {
	fmt.Fprintf(b, "- %s: %d (%.0f%%)\n", label, stat.Count, stat.Percent)
}

func writeTopicTable(b *strings.Builder, title string, topics []models.TopicCount) {
	if len(topics) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Topic | Count |\n")
	b.WriteString("|-------|-------|\n")
	for _, tc := range topics {
		fmt.Fprintf(b, "| %s | %d |\n", tc.Topic, tc.Count)
	}
	b.WriteString("\n")
}

// RenderPlan renders a cross-platform content plan as markdown
func RenderPlan(p *models.ContentPlan) string {
	var b strings.Builder

	b.WriteString("# Cross-platform content plan\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", p.GeneratedAt.Format("2006-01-02 15:04 MST"))

	platforms := make([]string, len(p.Platforms))
	for i, pl := range p.Platforms {
		platforms[i] = string(pl)
	}
	fmt.Fprintf(&b, "Platforms covered: %s\n\n", strings.Join(platforms, ", "))

	if len(p.Entries) == 0 {
		b.WriteString("No opportunities found. Run platform analyses with more accounts or a lower threshold.\n")
		return b.String()
	}

	b.WriteString("| Rank | Topic | Source | Engagement (0-10) | Opportunity | Example |\n")
	b.WriteString("|------|-------|--------|-------------------|-------------|--------|\n")
	for i, e := range p.Entries {
		fmt.Fprintf(&b, "| %d | %s | %s | %.1f | %.2f | %s |\n",
			i+1, e.Topic, e.SourcePlatform, e.SourceEngagement, e.Opportunity, e.ExampleURL)
	}
	b.WriteString("\n")

	return b.String()
}
