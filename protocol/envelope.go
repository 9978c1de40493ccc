// Package protocol defines the binary frames exchanged with clients. Frames
// are protobuf-encoded google.protobuf.Struct messages so that the payload
// schema can follow the engine's JSON shapes without generated code.
package protocol

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server payload kinds.
const (
	KindWelcome    = "welcome"
	KindSnapshot   = "snapshot"
	KindResolution = "resolution"
	KindScenarios  = "scenarios"
	KindSuggestion = "suggestion"
	KindError      = "error"
)

// Error codes carried by KindError payloads.
const (
	CodeBadFrame         int32 = 1
	CodeUnknownCommand   int32 = 2
	CodeNoSession        int32 = 3
	CodeInvalidSelection int32 = 4
	CodePhaseViolation   int32 = 5
	CodeNoCrisis         int32 = 6
	CodeInternal         int32 = 7
)

var marshalOpts = proto.MarshalOptions{Deterministic: true}

// ServerEnvelope wraps every server to client frame.
type ServerEnvelope struct {
	RoomID     string
	ServerSeq  uint64
	ServerTsMs int64
	Kind       string
	Payload    *structpb.Struct
}

func (e *ServerEnvelope) toStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"room_id":      structpb.NewStringValue(e.RoomID),
		"server_seq":   structpb.NewNumberValue(float64(e.ServerSeq)),
		"server_ts_ms": structpb.NewNumberValue(float64(e.ServerTsMs)),
		"kind":         structpb.NewStringValue(e.Kind),
	}
	if e.Payload != nil {
		fields["payload"] = structpb.NewStructValue(e.Payload)
	}
	return &structpb.Struct{Fields: fields}
}

func MarshalServerEnvelope(e *ServerEnvelope) ([]byte, error) {
	return marshalOpts.Marshal(e.toStruct())
}

func UnmarshalServerEnvelope(b []byte) (*ServerEnvelope, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode server envelope: %w", err)
	}
	f := s.GetFields()
	env := &ServerEnvelope{
		RoomID:     f["room_id"].GetStringValue(),
		ServerSeq:  uint64(f["server_seq"].GetNumberValue()),
		ServerTsMs: int64(f["server_ts_ms"].GetNumberValue()),
		Kind:       f["kind"].GetStringValue(),
		Payload:    f["payload"].GetStructValue(),
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("decode server envelope: missing kind")
	}
	return env, nil
}

// ToStruct converts any JSON-encodable value with an object shape.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a Struct into v through its JSON form.
func FromStruct(s *structpb.Struct, v any) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func ErrorPayload(code int32, msg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":    structpb.NewNumberValue(float64(code)),
		"message": structpb.NewStringValue(msg),
	}}
}
