package extraction

import (
	"strings"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/domain"
)

const systemInstruction = "You are an expert assistant for financial document analysis. " +
	"You always respond with valid JSON."

// buildPrompt assembles the single user prompt: extraction instructions, the
// caller's categories grouped by kind, the (bounded) statement text and the
// strict output contract. Text beyond maxChars is dropped silently; that is a
// known precision loss, not an error.
func buildPrompt(text string, cats *category.Index, maxChars int) string {
	expense := strings.Join(cats.Labels(domain.KindExpense), ", ")
	income := strings.Join(cats.Labels(domain.KindIncome), ", ")
	if expense == "" {
		expense = "None defined"
	}
	if income == "" {
		income = "None defined"
	}

	var b strings.Builder
	b.WriteString("You are an expert analyst of bank account statements. Analyze the following text extracted from a bank PDF and extract ALL transactions you find.\n\n")
	b.WriteString("IMPORTANT:\n")
	b.WriteString("- Identify every transaction regardless of the bank's format.\n")
	b.WriteString("- The text may be BADLY FORMATTED (missing spaces, glued columns).\n")
	b.WriteString("- Look for patterns like: DATE + DESCRIPTION + AMOUNT.\n")
	b.WriteString("- Dates may appear as YYYY-MM-DD, DD/MM/YYYY, etc.\n")
	b.WriteString("- Amounts may carry $, commas, periods, negative signs.\n")
	b.WriteString("- Report \"amount\" as a positive magnitude (drop the minus sign of expenses).\n")
	b.WriteString("- A negative amount ($-123.45) is an expense; a positive one is income.\n")
	b.WriteString("- Ignore headers, totals, closing balances and account numbers.\n")
	b.WriteString("- IMPORTANT: Use ONLY the user categories listed below.\n\n")

	b.WriteString("USER CATEGORIES (USE ONLY THESE):\n")
	b.WriteString("EXPENSES: " + expense + "\n")
	b.WriteString("INCOME: " + income + "\n\n")

	b.WriteString("CATEGORY INSTRUCTIONS:\n")
	b.WriteString("- Inspect the description of each transaction.\n")
	b.WriteString("- Assign the MOST appropriate of the available categories.\n")
	b.WriteString("- If nothing fits clearly, use \"Otros\" when it exists.\n")
	b.WriteString("- NEVER invent new categories.\n\n")

	b.WriteString("STATEMENT TEXT:\n")
	b.WriteString(truncate(text, maxChars))
	b.WriteString("\n\n")

	b.WriteString("Respond with a JSON object containing a \"transactions\" array:\n")
	b.WriteString(`{"transactions": [{"date": "YYYY-MM-DD", "amount": 123.45, "description": "Description", "type": "expense", "suggestedCategory": "Alimentación", "currency": "USD"}]}` + "\n\n")
	b.WriteString(`If you find no transactions, respond: {"transactions": []}`)

	return b.String()
}

// truncate bounds the prompt text without splitting a UTF-8 sequence.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
