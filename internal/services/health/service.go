package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB            *sql.DB
	LLMConfigured bool
}

// NewService constructs a new health service.
func NewService(db *sql.DB, llmConfigured bool) *Service {
	return &Service{DB: db, LLMConfigured: llmConfigured}
}

// Status returns the health payload. The database check uses a short ping
// so a stalled pool cannot hang the endpoint.
func (s *Service) Status(ctx context.Context) map[string]any {
	dbState := "disabled"
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			dbState = "down"
		} else {
			dbState = "up"
		}
	}
	return map[string]any{
		"ok":            dbState != "down",
		"database":      dbState,
		"llmConfigured": s.LLMConfigured,
	}
}
