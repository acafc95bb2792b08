package analyses

import (
	"time"

	"jobsearch-backend/internal/llm"
)

// Record is one stored analysis. A document has at most one per user.
type Record struct {
	ID          string
	UserID      string
	DocumentID  string
	Skills      []llm.SkillCategory
	Summary     string
	JobKeywords []string
	AnalyzedAt  time.Time
}
