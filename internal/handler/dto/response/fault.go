package response

import (
	"encoding/json"

	"bookstore-choreography/internal/usecase/queries"
)

type FaultResponse struct {
	MessageID  string          `json:"messageId"`
	Kind       string          `json:"kind"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload"`
	Exceptions []string        `json:"exceptions"`
	Attempts   int             `json:"attempts"`
	Timestamp  int64           `json:"timestamp"`
}

func FromFaultViews(vs []*queries.FaultView) []*FaultResponse {
	res := make([]*FaultResponse, len(vs))
	for i, v := range vs {
		res[i] = &FaultResponse{
			MessageID:  v.MessageID,
			Kind:       v.Kind,
			Queue:      v.Queue,
			Payload:    json.RawMessage(v.Payload),
			Exceptions: v.Exceptions,
			Attempts:   v.Attempts,
			Timestamp:  v.Timestamp.Unix(),
		}
	}
	return res
}
