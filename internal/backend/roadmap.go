package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nayidisha/disha/internal/llm"
	"github.com/nayidisha/disha/internal/roadmap"
)

type generateRoadmapRequest struct {
	Subject   string `json:"subject"`
	Goal      string `json:"goal"`
	Level     string `json:"level"`
	SessionID string `json:"sessionId"`
}

// Generate asks the backend to generate a roadmap for the selections.
func (c *Client) Generate(ctx context.Context, sel roadmap.Selections) (roadmap.Roadmap, error) {
	sid, err := c.SessionID(ctx)
	if err != nil {
		return roadmap.Roadmap{}, err
	}
	data, err := c.call(ctx, "generate roadmap", http.MethodPost, "/roadmap/generate", generateRoadmapRequest{
		Subject:   sel.Subject,
		Goal:      sel.Goal,
		Level:     sel.SkillLevel,
		SessionID: sid,
	})
	if err != nil {
		return roadmap.Roadmap{}, err
	}
	var r roadmap.Roadmap
	if err := json.Unmarshal(data, &r); err != nil {
		return roadmap.Roadmap{}, fmt.Errorf("generate roadmap: decode: %w", err)
	}
	if err := r.Validate(); err != nil {
		return roadmap.Roadmap{}, &llm.ErrInvalidResponse{Content: data, Err: err}
	}
	if r.TotalModules == 0 {
		r.TotalModules = len(r.Modules)
	}
	return r, nil
}

// Roadmap fetches the roadmap the backend holds for this session. It
// returns nil without error when there is none.
func (c *Client) Roadmap(ctx context.Context) (*roadmap.Roadmap, error) {
	sid, err := c.SessionID(ctx)
	if err != nil {
		return nil, err
	}
	var r roadmap.Roadmap
	err = c.do(ctx, "get roadmap", http.MethodGet, "/roadmap/"+url.PathEscape(sid), nil, &r)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(r.Modules) == 0 {
		return nil, nil
	}
	return &r, nil
}
