package analyzer

import "strings"

const logSystemPrompt = "You are LogWise AI, a log analysis expert. Always return valid JSON."

const querySystemPrompt = "You are LogWise AI, a database query reviewer. Always return valid JSON."

func buildLogPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze the following log text and respond with a JSON object with exactly these fields:\n")
	b.WriteString(`{
  "summary": "one or two sentence summary of what happened",
  "cause": "most likely root cause",
  "severity": "info | warning | critical",
  "fix": "concrete steps to resolve the problem",
  "codePatch": "optional code change that fixes the problem, empty string if not applicable"
}`)
	b.WriteString("\n\nLOG TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY valid JSON, no additional text.")
	return b.String()
}

func buildQueryPrompt(query, functionName string) string {
	var b strings.Builder
	b.WriteString("Review the following database query. Detect its type and language, check it for syntax errors, ")
	b.WriteString("and suggest performance improvements and indexes. Respond with a JSON object with exactly these fields:\n")
	b.WriteString(`{
  "queryType": "SELECT | INSERT | UPDATE | DELETE | AGGREGATE | OTHER",
  "language": "SQL | PostgreSQL | MySQL | MongoDB | other",
  "isValid": true,
  "errors": ["syntax errors, empty if valid"],
  "optimizedQuery": "rewritten query",
  "optimizationReason": "why the rewrite is faster",
  "optimizations": [{"suggestion": "", "reason": "", "impact": "low | medium | high"}],
  "indexSuggestions": [{"index": "index definition", "reason": "", "columns": ["column"]}],
  "correctedQuery": "syntax-corrected query when invalid, empty otherwise"
}`)
	if functionName != "" {
		b.WriteString("\n\nCALLING FUNCTION: ")
		b.WriteString(functionName)
	}
	b.WriteString("\n\nQUERY:\n")
	b.WriteString(query)
	b.WriteString("\n\nReturn ONLY valid JSON, no additional text.")
	return b.String()
}
