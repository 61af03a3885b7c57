package receipt

import (
	"strings"

	"github.com/expensio/expensio/internal/finance/domain"
)

// buildReceiptPrompt constructs the fixed extraction instruction. The model
// is constrained to the closed category set and told to return raw JSON,
// though the response is still defensively cleaned before parsing.
func buildReceiptPrompt() string {
	var b strings.Builder
	b.WriteString("You are a receipt parser for a personal expense tracker.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Extract the expense from the attached receipt photo.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")
	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"name\": string, the merchant or a short description\n")
	b.WriteString("- \"amount\": number, the receipt total, strictly positive\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"category\": string, EXACTLY one of the categories below\n\n")

	b.WriteString("Use ONLY the following categories:\n")
	for _, category := range domain.AllCategories {
		b.WriteString("  - " + string(category) + "\n")
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- If you are unsure about the category, use \"Other\".\n")
	b.WriteString("- Return ONLY valid raw JSON.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Do NOT use ```json or any Markdown.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n")
	return b.String()
}
