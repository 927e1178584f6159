package analyzer

const logAnalysisSchema = `{
  "type": "object",
  "required": ["summary", "cause", "severity", "fix"],
  "properties": {
    "summary": {"type": "string"},
    "cause": {"type": "string"},
    "severity": {"type": "string", "enum": ["info", "warning", "critical"]},
    "fix": {"type": "string"},
    "codePatch": {"type": "string"}
  }
}`

const queryAnalysisSchema = `{
  "type": "object",
  "required": ["queryType", "isValid", "optimizedQuery"],
  "properties": {
    "queryType": {"type": "string"},
    "language": {"type": "string"},
    "isValid": {"type": "boolean"},
    "errors": {"type": "array", "items": {"type": "string"}},
    "optimizedQuery": {"type": "string"},
    "optimizationReason": {"type": "string"},
    "optimizations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "suggestion": {"type": "string"},
          "reason": {"type": "string"},
          "impact": {"type": "string"}
        }
      }
    },
    "indexSuggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "index": {"type": "string"},
          "reason": {"type": "string"},
          "columns": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "correctedQuery": {"type": "string"}
  }
}`
