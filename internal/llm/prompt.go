package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/resume_analysis.txt
var resumeAnalysisPrompt string

// BuildAnalysisPrompt renders the resume analysis prompt for the given text.
func BuildAnalysisPrompt(resumeText string) string {
	return strings.Replace(resumeAnalysisPrompt, "{{RESUME_TEXT}}", resumeText, 1)
}
