package client

import (
	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/metadata"
)

// TriggerRequest is the body of the batched trigger call.
type TriggerRequest struct {
	Tests    []*api.Payload     `json:"tests"`
	Metadata *metadata.Metadata `json:"metadata,omitempty"`
}

// PollResultsResponse is the body of a poll_results response.
type PollResultsResponse struct {
	Results []api.PollResult `json:"results"`
}
