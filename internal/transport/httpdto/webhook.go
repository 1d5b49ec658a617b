package httpdto

import "content-orchestrator/internal/services"

// WebhookAck is returned to the provider once the callback was recorded.
type WebhookAck struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id"`
	Matched  bool   `json:"matched"`
	PostID   string `json:"post_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

func NewWebhookAck(r services.WebhookReceipt) WebhookAck {
	return WebhookAck{
		Received: true,
		EventID:  r.EventID,
		Matched:  r.Matched,
		PostID:   r.PostID,
		Status:   string(r.Status),
	}
}
