package extraction

import (
	"fmt"
	"strings"
)

// categoriesPrompt lists the allowed category labels for the model,
// formatted one per line.
func categoriesPrompt() string {
	var b strings.Builder
	b.WriteString("Use ONLY the following categories:\n")
	for _, c := range Categories {
		b.WriteString("  - " + c + "\n")
	}
	b.WriteString("If you are unsure, use \"" + CategoryOther + "\".\n")
	return b.String()
}

// statementPrompt builds the text-mode instruction: parse bank-statement
// text into a strict JSON array of transaction objects.
func statementPrompt(text string) string {
	base :=
		"You are a financial statement parser.\n\n" +
			"Task:\n" +
			"- Extract the transactions from the bank statement text below.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output a JSON array of objects, at most " + fmt.Sprint(maxModelDrafts) + " entries.\n\n" +
			"Each object must have these fields:\n" +
			"- \"type\": string, exactly \"income\" or \"expense\"\n" +
			"- \"amount\": positive number\n" +
			"- \"category\": string (one of the predefined categories)\n" +
			"- \"description\": short string\n" +
			"- \"date\": string, ISO format \"YYYY-MM-DD\"\n\n"

	rules :=
		"Rules:\n" +
			"- Ignore statement headers, running balances, and summary rows.\n" +
			"- Ignore fees and charges under 5.\n" +
			"- Money in is \"income\", money out is \"expense\"; amount is always positive.\n\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"[\" and end with \"]\".\n\n"

	return base + categoriesPrompt() + "\n" + rules + "Statement text:\n" + text
}

// receiptPrompt builds the image-mode instruction: read a photographed
// receipt as exactly one transaction, returned as a single JSON object.
func receiptPrompt() string {
	return "You are a receipt reader.\n\n" +
		"Task:\n" +
		"- The attached image is a photographed receipt for a single transaction.\n" +
		"- Output STRICT JSON only: one JSON object, no array, no extra text.\n\n" +
		"The object must have these fields:\n" +
		"- \"type\": string, exactly \"income\" or \"expense\" (default \"expense\" unless the receipt clearly shows money received)\n" +
		"- \"amount\": positive number, the receipt total\n" +
		"- \"category\": string (one of the predefined categories)\n" +
		"- \"description\": short string, e.g. the merchant name\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\"; if no date is visible, use today's date\n\n" +
		categoriesPrompt() + "\n" +
		"Return ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Output must begin with \"{\" and end with \"}\".\n"
}
