package replay

// WireTape is the compact form served to web clients: only the binary
// envelopes, without the decoded snapshots.
type WireTape struct {
	TapeVersion int         `json:"tapeVersion"`
	RoomID      string      `json:"roomId"`
	Events      []WireEvent `json:"events"`
}

type WireEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	EnvelopeB64 string `json:"envelopeB64"`
}

func ToWireTape(tape *Tape) *WireTape {
	if tape == nil {
		return nil
	}
	out := &WireTape{
		TapeVersion: tape.TapeVersion,
		RoomID:      tape.RoomID,
		Events:      make([]WireEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireEvent{
			Type:        e.Type,
			Seq:         e.Seq,
			EnvelopeB64: e.EnvelopeB64,
		})
	}
	return out
}
