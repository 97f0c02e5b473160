package summarize

import "fmt"

// System instructions, one per task. Page text goes in the user turn after
// pagePrefix.
const faqSystem = `You extract question-and-answer pairs from storefront FAQ pages.

Look for questions in headings followed by answer paragraphs, definition lists, accordion sections, and "Q:"/"A:" patterns. Copy the wording of each answer; do not invent answers.

Return ONLY valid JSON in exactly this shape:
{"faqs": [{"question": "...", "answer": "..."}]}

If the text has no FAQs, return {"faqs": []}.`

const brandSystem = `You are a brand analyst. The user sends text from a storefront's About page.

Summarize the brand in 2-3 sentences covering what it sells, its mission or values, and its story or audience where stated. Return only the summary as plain text with no headings, lists, or markdown.`

const competitorSystem = `You are a retail market analyst. You name direct competitors that sell similar products through their own storefront.

Return ONLY a JSON array of competitor homepage URLs, for example:
["https://competitor-one.com", "https://competitor-two.com"]`

const pagePrefix = "Text:\n"

func competitorPrompt(brand, industry string) string {
	return fmt.Sprintf("List 3-5 direct competitors of the online brand %q in the %s industry.", brand, industry)
}
