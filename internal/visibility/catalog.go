package visibility

// Category is one fixed lens applied independently to the crawled content.
type Category struct {
	ID          string
	Label       string
	Description string
	Prompt      string
}

// Categories is the closed set of analysis categories, in the order their
// results are aggregated. Adding a category means adding a prompt here and
// updating any UI-facing listing.
var Categories = []Category{
	{
		ID:          "content_clarity",
		Label:       "Content Clarity",
		Description: "How plainly the site states what it offers, where it is, and how to act on it.",
		Prompt: `Review the pages for content clarity problems that would stop an AI assistant from
summarising this website accurately. Look for: vague or marketing-heavy copy with no
concrete facts, missing essentials (what is offered, location, contact details, prices),
key information locked in images or implied rather than stated, and pages whose purpose
is not stated in the first paragraph. Prefer issues a copywriter could fix directly.`,
	},
	{
		ID:          "page_coverage",
		Label:       "Page Coverage",
		Description: "Whether the crawled pages cover the topics an assistant needs to answer questions.",
		Prompt: `Judge whether this set of pages covers the topics an AI assistant would need to answer
common questions about the business. Look for: missing or thin pages for obvious topics
(about, contact, offerings, pricing, FAQ), important content that only exists buried
inside an unrelated page, and near-duplicate pages that dilute the useful ones. Only
report gaps you can infer from what is present; do not invent pages you cannot see.`,
	},
	{
		ID:          "structured_data",
		Label:       "Structured Data",
		Description: "Machine-readable markup that lets AI systems extract facts reliably.",
		Prompt: `Look for missing or weak machine-readable structure. Check whether the pages mention
Schema.org/JSON-LD markup, organisation or product metadata, opening hours, addresses
and other facts in structured form. Flag facts that appear only as prose when a
well-known schema type exists for them, and obviously malformed or inconsistent
structured data if any markup is visible in the content.`,
	},
	{
		ID:          "consistency",
		Label:       "Internal Consistency",
		Description: "Whether names, facts, and figures agree across pages.",
		Prompt: `Compare the pages against each other for contradictions an AI system would trip over:
different names for the business or its offerings, conflicting addresses, phone numbers,
prices or opening hours, and claims on one page that another page contradicts. Cite both
sides of each conflict in the issue text so a human can locate it quickly.`,
	},
	{
		ID:          "structural_signals",
		Label:       "Structural Signals",
		Description: "Headings, titles, and document structure that guide machine comprehension.",
		Prompt: `Assess document structure as a machine would see it: missing or generic page titles,
heading text that does not describe the content beneath it, walls of text with no
sectioning, navigation labels that hide what a page contains, and link text like
"click here" that carries no meaning. Report structural fixes, not visual design ones.`,
	},
}
