package generator

import (
	"fmt"
	"math"
	"strings"
)

// Role identifies one of the four pipeline agents.
type Role int

const (
	RoleResearcher Role = iota
	RoleOutliner
	RoleWriter
	RoleEditor
)

// Roles lists the agents in execution order.
var Roles = []Role{RoleResearcher, RoleOutliner, RoleWriter, RoleEditor}

func (r Role) String() string {
	switch r {
	case RoleResearcher:
		return "researcher"
	case RoleOutliner:
		return "outliner"
	case RoleWriter:
		return "writer"
	case RoleEditor:
		return "editor"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Spec builds the agent definition for r.
func (r Role) Spec(cfg ArticleConfig) AgentSpec {
	switch r {
	case RoleResearcher:
		return ResearcherAgent(cfg)
	case RoleOutliner:
		return OutlinerAgent(cfg)
	case RoleWriter:
		return WriterAgent(cfg)
	case RoleEditor:
		return EditorAgent(cfg)
	default:
		panic(fmt.Sprintf("generator: unknown role %d", int(r)))
	}
}

// ModelTier selects the quality level the backend should run an agent on.
type ModelTier string

const (
	ModelOpus   ModelTier = "opus"
	ModelSonnet ModelTier = "sonnet"
)

// AgentSpec is the definition handed to the agent-session backend for one role.
type AgentSpec struct {
	Description string    `json:"description"`
	Prompt      string    `json:"prompt"`
	Tools       []string  `json:"tools,omitempty"`
	Model       ModelTier `json:"model"`
}

// BuildAgents returns the specs for every role keyed by role name.
func BuildAgents(cfg ArticleConfig) map[string]AgentSpec {
	agents := make(map[string]AgentSpec, len(Roles))
	for _, r := range Roles {
		agents[r.String()] = r.Spec(cfg)
	}
	return agents
}

// SectionCount is the number of main sections the outliner plans for a target length.
func SectionCount(length int) int {
	n := int(math.Ceil(float64(length) / 300))
	if n < 3 {
		return 3
	}
	return n
}

// SectionBudget is the advisory word allocation written into the outline prompt.
type SectionBudget struct {
	Introduction int
	PerSection   int
	Conclusion   int
}

// SectionBudgets gives 10% each to introduction and conclusion and spreads
// the remaining 80% across the main sections.
func SectionBudgets(length int) SectionBudget {
	return SectionBudget{
		Introduction: int(math.Round(float64(length) * 0.1)),
		PerSection:   int(math.Round(float64(length) * 0.8 / float64(SectionCount(length)))),
		Conclusion:   int(math.Round(float64(length) * 0.1)),
	}
}

func isJapanese(cfg ArticleConfig) bool {
	return cfg.Language == "ja"
}

func keywordList(cfg ArticleConfig, empty string) string {
	if len(cfg.Keywords) == 0 {
		return empty
	}
	return strings.Join(cfg.Keywords, ", ")
}

// ResearcherAgent gathers facts and sources with web tools.
func ResearcherAgent(cfg ArticleConfig) AgentSpec {
	lang := "Conduct research and write the brief in English."
	if isJapanese(cfg) {
		lang = "Conduct research and write the brief in Japanese."
	}

	var sb strings.Builder
	sb.WriteString("You are a research specialist. Your job is to gather comprehensive, accurate information about the given topic.\n\n")
	sb.WriteString("## Task\nResearch the following topic thoroughly:\n")
	fmt.Fprintf(&sb, "- **Topic**: %s\n", cfg.Topic)
	fmt.Fprintf(&sb, "- **Style**: %s\n", cfg.Style)
	fmt.Fprintf(&sb, "- **Target audience**: %s\n", cfg.Audience)
	fmt.Fprintf(&sb, "- **Keywords to cover**: %s\n\n", keywordList(cfg, "none specified"))
	sb.WriteString("## Instructions\n")
	sb.WriteString("1. Use WebSearch to find recent, authoritative sources about the topic.\n")
	sb.WriteString("2. Use WebFetch to read key pages for deeper understanding when needed.\n")
	sb.WriteString("3. Focus on facts, statistics, expert opinions, and recent developments.\n")
	sb.WriteString("4. Identify 3-8 high-quality sources with titles and URLs.\n\n")
	sb.WriteString("## Output Format\nWrite a structured research brief with:\n")
	sb.WriteString("- **Key Facts**: Bullet points of the most important findings\n")
	sb.WriteString("- **Statistics & Data**: Any relevant numbers or data points\n")
	sb.WriteString("- **Expert Perspectives**: Notable viewpoints from authorities\n")
	sb.WriteString("- **Recent Developments**: Latest news or trends\n")
	sb.WriteString("- **Sources**: List each source as \"- [Title](URL)\"\n\n")
	sb.WriteString(lang + "\n")
	fmt.Fprintf(&sb, "Be thorough but concise. Focus on information that will be most useful for writing a %s article targeting %s.", cfg.Style, cfg.Audience)

	return AgentSpec{
		Description: "Research specialist that gathers information, sources, and key facts about a given topic using web search.",
		Prompt:      sb.String(),
		Tools:       []string{"WebSearch", "WebFetch"},
		Model:       ModelSonnet,
	}
}

// OutlinerAgent turns the research brief into a sectioned outline with word budgets.
func OutlinerAgent(cfg ArticleConfig) AgentSpec {
	lang := "Write the outline in English."
	if isJapanese(cfg) {
		lang = "Write the outline in Japanese."
	}
	sections := SectionCount(cfg.Length)
	budget := SectionBudgets(cfg.Length)

	var sb strings.Builder
	sb.WriteString("You are an expert article outliner. Your job is to create a well-structured outline for a blog article.\n\n")
	sb.WriteString("## Task\nCreate a detailed article outline based on the research brief provided by the researcher agent.\n")
	writeRequirements(&sb, cfg, "none specified")
	sb.WriteString("\n## Instructions\n")
	sb.WriteString("1. Analyze the research brief from the previous step.\n")
	sb.WriteString("2. Design a logical article structure with clear sections.\n")
	fmt.Fprintf(&sb, "3. For a %d-word article, plan %d main sections.\n", cfg.Length, sections)
	sb.WriteString("4. Each section should have a clear purpose and key points to cover.\n\n")
	sb.WriteString("## Output Format\nProduce a structured outline:\n\n")
	sb.WriteString("**Title**: [Compelling article title]\n\n")
	fmt.Fprintf(&sb, "**Introduction** (~%d words)\n- Hook / opening angle\n- What the reader will learn\n\n", budget.Introduction)
	for i := 1; i <= 2 && i <= sections; i++ {
		fmt.Fprintf(&sb, "**Section %d: [Heading]** (~%d words)\n- Key point 1\n- Key point 2\n\n", i, budget.PerSection)
	}
	fmt.Fprintf(&sb, "[...continue until all %d sections are planned, ~%d words each]\n\n", sections, budget.PerSection)
	fmt.Fprintf(&sb, "**Conclusion** (~%d words)\n- Summary / takeaway\n- Call to action (if appropriate for %s style)\n\n", budget.Conclusion, cfg.Style)
	sb.WriteString("**Tags**: [3-5 relevant tags]\n\n")
	sb.WriteString(lang + "\n")
	sb.WriteString("Ensure the flow is logical and each section builds on the previous one.")

	return AgentSpec{
		Description: "Article structure specialist that creates detailed outlines with headings, section summaries, and logical flow.",
		Prompt:      sb.String(),
		Model:       ModelSonnet,
	}
}

// WriterAgent drafts the full Markdown article from the outline.
func WriterAgent(cfg ArticleConfig) AgentSpec {
	lang := "Write the entire article in English."
	if isJapanese(cfg) {
		lang = "Write the entire article in Japanese."
	}

	var sb strings.Builder
	sb.WriteString("You are an expert blog writer. Your job is to write a complete, high-quality article in Markdown format.\n\n")
	sb.WriteString("## Task\nWrite a full blog article based on the outline and research brief provided by previous agents.\n")
	writeRequirements(&sb, cfg, "none specified")
	sb.WriteString("\n## Writing Guidelines\n")
	sb.WriteString("1. Follow the outline structure exactly.\n")
	fmt.Fprintf(&sb, "2. Write in a %s tone appropriate for %s.\n", cfg.Tone, cfg.Audience)
	sb.WriteString("3. Use Markdown formatting: ## for headings, **bold** for emphasis, `code` for technical terms.\n")
	sb.WriteString("4. Include relevant examples, analogies, or code snippets where appropriate.\n")
	fmt.Fprintf(&sb, "5. Target approximately %d words total.\n", cfg.Length)
	fmt.Fprintf(&sb, "6. Naturally incorporate keywords: %s.\n", keywordList(cfg, "N/A"))
	sb.WriteString("7. Do NOT include frontmatter — just the article body starting with the title as # heading.\n\n")
	sb.WriteString("## Style-Specific Instructions\n")
	sb.WriteString(StyleGuidance(cfg.Style) + "\n\n")
	sb.WriteString("## Output\nWrite the complete article in Markdown. Start with `# [Title]` and write all sections.\n\n")
	sb.WriteString(lang)

	return AgentSpec{
		Description: "Expert blog writer that produces full article drafts in Markdown based on the outline and research.",
		Prompt:      sb.String(),
		Model:       ModelOpus,
	}
}

// EditorAgent polishes the draft and appends the metadata block the parser reads.
func EditorAgent(cfg ArticleConfig) AgentSpec {
	lang := "Edit and output the final article in English."
	if isJapanese(cfg) {
		lang = "Edit and output the final article in Japanese."
	}

	var sb strings.Builder
	sb.WriteString("You are a professional editor. Your job is to review and polish the article draft into its final form.\n\n")
	sb.WriteString("## Task\nEdit and improve the article draft from the writer agent.\n")
	fmt.Fprintf(&sb, "- **Topic**: %s\n", cfg.Topic)
	fmt.Fprintf(&sb, "- **Style**: %s\n", cfg.Style)
	fmt.Fprintf(&sb, "- **Target audience**: %s\n", cfg.Audience)
	fmt.Fprintf(&sb, "- **Tone**: %s\n", cfg.Tone)
	fmt.Fprintf(&sb, "- **Target length**: ~%d words\n", cfg.Length)
	fmt.Fprintf(&sb, "- **Keywords**: %s\n\n", keywordList(cfg, "none specified"))
	sb.WriteString("## Editing Checklist\n")
	sb.WriteString("1. **Clarity**: Simplify complex sentences. Remove jargon unless targeting experts.\n")
	sb.WriteString("2. **Flow**: Ensure smooth transitions between sections and paragraphs.\n")
	sb.WriteString("3. **Accuracy**: Verify claims match the research brief. Flag any unsupported statements.\n")
	sb.WriteString("4. **Engagement**: Strengthen the opening hook. Ensure the conclusion is compelling.\n")
	sb.WriteString("5. **Formatting**: Verify Markdown is correct and consistent.\n")
	fmt.Fprintf(&sb, "6. **Length**: Adjust to be within 10%% of the %d-word target.\n", cfg.Length)
	sb.WriteString("7. **SEO**: Ensure the title is compelling and keywords appear naturally.\n")
	sb.WriteString("8. **Grammar & Style**: Fix any grammatical errors or awkward phrasing.\n\n")
	sb.WriteString("## Output Format\nOutput the final edited article in Markdown format. Start with `# [Title]` (no frontmatter).\n\n")
	sb.WriteString("After the article, on a new line, output a JSON block with metadata:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"title\": \"Article Title\",\n")
	sb.WriteString("  \"slug\": \"article-title-slug\",\n")
	sb.WriteString("  \"tags\": [\"tag1\", \"tag2\", \"tag3\"],\n")
	sb.WriteString("  \"sources\": [\n")
	sb.WriteString("    {\"title\": \"Source Name\", \"url\": \"https://example.com\"}\n")
	sb.WriteString("  ],\n")
	fmt.Fprintf(&sb, "  \"wordCount\": %d\n", cfg.Length)
	sb.WriteString("}\n")
	sb.WriteString("```\n\n")
	sb.WriteString(lang)

	return AgentSpec{
		Description: "Professional editor that reviews, polishes, and improves the article draft for clarity, accuracy, and readability.",
		Prompt:      sb.String(),
		Model:       ModelOpus,
	}
}

func writeRequirements(sb *strings.Builder, cfg ArticleConfig, noKeywords string) {
	fmt.Fprintf(sb, "- **Topic**: %s\n", cfg.Topic)
	fmt.Fprintf(sb, "- **Style**: %s\n", cfg.Style)
	fmt.Fprintf(sb, "- **Target audience**: %s\n", cfg.Audience)
	fmt.Fprintf(sb, "- **Tone**: %s\n", cfg.Tone)
	fmt.Fprintf(sb, "- **Target length**: ~%d words\n", cfg.Length)
	fmt.Fprintf(sb, "- **Keywords**: %s\n", keywordList(cfg, noKeywords))
}

// StyleGuidance returns the writer's style-specific bullet list.
func StyleGuidance(style Style) string {
	switch style {
	case StyleTechnical:
		return "- Use precise technical language\n- Include code examples where relevant\n- Explain complex concepts clearly\n- Link to documentation or specs when referencing technologies"
	case StyleMarketing:
		return "- Focus on benefits and value propositions\n- Use persuasive language\n- Include social proof or case studies\n- End with a clear call to action"
	case StyleTutorial:
		return "- Use step-by-step instructions\n- Include code snippets with explanations\n- Add tips and common pitfalls\n- Make it easy to follow along"
	case StyleOpinion:
		return "- Present a clear thesis\n- Support with evidence and examples\n- Acknowledge counterarguments\n- Write with conviction but remain respectful"
	case StyleNews:
		return "- Lead with the most important information\n- Use inverted pyramid structure\n- Include quotes and attributions\n- Keep language objective and factual"
	default:
		return "- Write clearly and engagingly\n- Use appropriate examples"
	}
}

// Requirements renders the article requirements block shared by the orchestrator
// and by backends that forward context between roles.
func Requirements(cfg ArticleConfig) string {
	var sb strings.Builder
	sb.WriteString("## Article Requirements\n")
	fmt.Fprintf(&sb, "- **Topic**: %s\n", cfg.Topic)
	fmt.Fprintf(&sb, "- **Style**: %s\n", cfg.Style)
	fmt.Fprintf(&sb, "- **Audience**: %s\n", cfg.Audience)
	fmt.Fprintf(&sb, "- **Tone**: %s\n", cfg.Tone)
	fmt.Fprintf(&sb, "- **Length**: ~%d words\n", cfg.Length)
	fmt.Fprintf(&sb, "- **Language**: %s\n", cfg.Language)
	fmt.Fprintf(&sb, "- **Keywords**: %s\n", keywordList(cfg, "none"))
	return sb.String()
}

// BuildOrchestratorPrompt is the top-level instruction that sequences the four agents.
func BuildOrchestratorPrompt(cfg ArticleConfig) string {
	var sb strings.Builder
	sb.WriteString("You are an article generation orchestrator. Your job is to coordinate 4 specialized agents to produce a high-quality blog article.\n\n")
	sb.WriteString(Requirements(cfg))
	sb.WriteString("\n## Workflow\nExecute these agents IN ORDER. Each agent builds on the previous agent's output.\n\n")
	sb.WriteString("1. **researcher** — Research the topic using web search. Gather facts, data, and sources.\n")
	sb.WriteString("2. **outliner** — Create a detailed article outline based on the research.\n")
	sb.WriteString("3. **writer** — Write the full article in Markdown following the outline.\n")
	sb.WriteString("4. **editor** — Polish and finalize the article. Output must include a JSON metadata block.\n\n")
	sb.WriteString("## Instructions\n")
	sb.WriteString("- Pass the output of each agent as context to the next, including the article requirements above.\n")
	sb.WriteString("- Use the Task tool to delegate to each agent in sequence.\n")
	sb.WriteString("- After the editor finishes, output the COMPLETE final article exactly as the editor produced it (including the JSON metadata block).\n")
	sb.WriteString("- Do NOT modify the editor's output.")
	return sb.String()
}
