package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/edvm/autoblogger/internal/workflow"
	"github.com/edvm/autoblogger/provider"
)

var toneMap = map[string]string{
	"professional":      "with a professional, authoritative voice",
	"casual":            "with a friendly, conversational tone",
	"technical":         "with deep technical expertise and precision",
	"beginner-friendly": "who excels at explaining complex topics simply",
	"persuasive":        "with strong persuasive writing skills",
	"educational":       "focused on teaching and knowledge transfer",
	"entertaining":      "who writes in an engaging, entertaining style",
}

var styleMap = map[string]string{
	"informative": "clear, well-structured, and informative",
	"tutorial":    "step-by-step, practical, and actionable",
	"analytical":  "analytical, data-driven, and thorough",
	"narrative":   "story-driven and engaging",
	"listicle":    "organized in clear, digestible points",
	"comparison":  "focused on comparisons and evaluations",
	"guide":       "comprehensive and reference-worthy",
}

var audienceMap = map[string]string{
	"beginners":    "Write for complete beginners, avoiding jargon and explaining concepts clearly.",
	"intermediate": "Write for readers with some background knowledge.",
	"advanced":     "Write for experienced practitioners who appreciate technical depth.",
	"business":     "Write for business professionals focusing on practical applications.",
	"developers":   "Write for software developers with technical expertise.",
	"general":      "Write for a general audience with varied backgrounds.",
}

var lengthMap = map[string]string{
	"brief":         "Write a concise article (500-800 words) that covers the key points.",
	"standard":      "Write a standard-length article (800-1500 words) with good coverage.",
	"comprehensive": "Write a comprehensive article (1500-3000 words) with thorough coverage.",
	"detailed":      "Write a detailed, in-depth article (2000+ words) covering all aspects.",
}

var formatMap = map[string]string{
	"article":    "Structure as a traditional article with introduction, main sections, and conclusion.",
	"tutorial":   "Structure as a step-by-step tutorial with clear instructions and examples.",
	"guide":      "Structure as a comprehensive guide with sections covering different aspects.",
	"listicle":   "Structure as a numbered or bulleted list with explanations for each point.",
	"comparison": "Structure as a comparison piece, analyzing different options or approaches.",
	"review":     "Structure as a review, evaluating features, pros, cons, and recommendations.",
	"howto":      "Structure as a how-to guide with actionable steps and practical advice.",
}

func guidance(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return m[fallback]
}

// WritingAgent turns the research brief into a markdown draft. When the
// editor stage is disabled it also promotes the draft to final content, so a
// two-stage pipeline still produces a publishable article.
type WritingAgent struct {
	provider provider.Provider
	model    string
	finalize bool
	logger   *log.Logger
}

func NewWritingAgent(p provider.Provider, model string, finalize bool) *WritingAgent {
	return &WritingAgent{
		provider: p,
		model:    model,
		finalize: finalize,
		logger:   log.New(log.Writer(), "[WRITING-AGENT] ", log.LstdFlags),
	}
}

func (a *WritingAgent) Name() string { return "WritingAgent" }

func (a *WritingAgent) Execute(ctx context.Context, state *workflow.State) (map[string]interface{}, error) {
	details := map[string]interface{}{
		"model":     a.model,
		"finalized": a.finalize,
	}

	systemMessage := buildSystemMessage(state.Directives)
	prompt := buildWritingPrompt(state)

	a.logger.Printf("drafting article for: %s", state.CleanTopic)
	content, tokens, err := a.provider.GenerateWithTokens(ctx, systemMessage, prompt, a.model)
	details["tokens"] = tokens
	if err != nil {
		return details, &WritingError{Reason: "llm generation failed", Err: err}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return details, &WritingError{Reason: "llm returned empty draft"}
	}

	state.DraftContent = content
	details["word_count"] = len(strings.Fields(content))

	if a.finalize {
		if err := state.SetFinalContent(content); err != nil {
			return details, &WritingError{Reason: "could not finalize draft", Err: err}
		}
	}
	return details, nil
}

func buildSystemMessage(directives map[string]string) string {
	tone := guidance(toneMap, directives[workflow.DirectiveTone], "professional")
	style := guidance(styleMap, directives[workflow.DirectiveStyle], "informative")
	audience := guidance(audienceMap, directives[workflow.DirectiveAudience], "general")

	msg := fmt.Sprintf("You are an expert content creator and blogger %s. Your writing style is %s. %s",
		tone, style, audience)
	msg += " Use markdown for formatting (e.g., # for titles, ## for headings, * for lists, `code` for inline code)."
	return msg
}

func buildWritingPrompt(state *workflow.State) string {
	length := guidance(lengthMap, state.Directives[workflow.DirectiveLength], "comprehensive")
	format := guidance(formatMap, state.Directives[workflow.DirectiveFormat], "article")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a high-quality blog post on the topic: '%s'\n\n", state.CleanTopic)
	sb.WriteString("CONTENT GUIDELINES:\n")
	fmt.Fprintf(&sb, "- %s\n", length)
	fmt.Fprintf(&sb, "- %s\n", format)
	sb.WriteString("- Base your content on the provided research brief\n")
	sb.WriteString("- Ensure accuracy and cite key insights from the research\n")
	sb.WriteString("- Create engaging, valuable content for the target audience\n\n")

	sb.WriteString("RESEARCH BRIEF:\n")
	if state.ResearchBrief.Empty() {
		fmt.Fprintf(&sb, "No research available. Write from general knowledge about '%s'.\n", state.CleanTopic)
	} else {
		fmt.Fprintf(&sb, "Summary: %s\n", state.ResearchBrief.Summary)
		if len(state.ResearchBrief.Facts) > 0 {
			sb.WriteString("Key facts:\n")
			for _, f := range state.ResearchBrief.Facts {
				fmt.Fprintf(&sb, "- %s\n", f)
			}
		}
		if len(state.Sources) > 0 {
			sb.WriteString("Sources:\n")
			for _, u := range state.Sources {
				fmt.Fprintf(&sb, "- %s\n", u)
			}
		}
	}

	sb.WriteString(`
ADDITIONAL REQUIREMENTS:
- Use proper markdown formatting
- Include relevant headings and subheadings
- Make the content scannable with bullet points and lists where appropriate
- Ensure the content flows logically from introduction to conclusion
- Focus on providing value and actionable insights

Now write the complete blog post in markdown format:`)
	return sb.String()
}
