// Package v1 holds the JSON shapes of the render endpoints.
package v1

import "slidecast/internal/render"

// StatusCompleted is the status of a successful synchronous render.
const StatusCompleted = "completed"

// RenderRequest is the body of POST /render and POST /jobs.
//
//	{"images": ["https://...", x5], "audio": "https://...", "name": "optional"}
type RenderRequest struct {
	Images []string `json:"images"`
	Audio  string   `json:"audio"`
	Name   string   `json:"name,omitempty"`
}

// ToRequest maps the wire shape onto a render request.
func (r RenderRequest) ToRequest() render.Request {
	return render.Request{Images: r.Images, Audio: r.Audio, Name: r.Name}
}

// RenderResponse is the body of a successful POST /render.
type RenderResponse struct {
	Status    string `json:"status"`
	URL       string `json:"url"`
	Name      string `json:"name,omitempty"`
	AttemptID string `json:"attempt_id,omitempty"`
}

// FromResult builds the success response.
func FromResult(res *render.Result) RenderResponse {
	return RenderResponse{
		Status:    StatusCompleted,
		URL:       res.URL,
		Name:      res.Name,
		AttemptID: res.AttemptID,
	}
}
