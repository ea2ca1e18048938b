package dataType

// ControlFrame is a control message tunneled through the chat channel
type ControlFrame struct {
	OriginID  int    // Player id of the sending peer, not verified against the transport sender
	Signature string // Topic, e.g. "HostOverrideSettings"
	Payload   string // Opaque topic data, "null" when absent
}

const (
	SignatureHostOverrideSettings = "HostOverrideSettings"
	SignatureHostOverrideDisabled = "HostOverrideDisabled"

	NullPayload = "null"
)

// ChatLine is the envelope the reference relay moves between peers
type ChatLine struct {
	ID        string `json:"id"`        // UUID for deduplication
	SenderID  int    `json:"sender_id"` // Claimed by the sender, not trusted
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
