package analyses

import "time"

// SkillGroupResponse is one skill category, order preserved from the model.
type SkillGroupResponse struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// AnalysisResponse is the outward-facing representation of an analysis.
type AnalysisResponse struct {
	AnalysisID  string               `json:"analysisId"`
	DocumentID  string               `json:"documentId"`
	Skills      []SkillGroupResponse `json:"skills"`
	Summary     string               `json:"summary"`
	JobKeywords []string             `json:"jobKeywords"`
	AnalyzedAt  time.Time            `json:"analyzedAt"`
	Cached      bool                 `json:"cached"`
}

func toResponse(rec Record, cached bool) AnalysisResponse {
	groups := make([]SkillGroupResponse, 0, len(rec.Skills))
	for _, cat := range rec.Skills {
		groups = append(groups, SkillGroupResponse{
			Category: cat.Name,
			Skills:   cat.Skills,
		})
	}
	return AnalysisResponse{
		AnalysisID:  rec.ID,
		DocumentID:  rec.DocumentID,
		Skills:      groups,
		Summary:     rec.Summary,
		JobKeywords: rec.JobKeywords,
		AnalyzedAt:  rec.AnalyzedAt,
		Cached:      cached,
	}
}