package protocol

import (
	"errors"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// SnapshotToStruct converts an engine snapshot. News items carry their
// rendered headline next to the flag.
func SnapshotToStruct(snap crisis.Snapshot) (*structpb.Struct, error) {
	s, err := ToStruct(snap)
	if err != nil {
		return nil, err
	}
	headlines := make([]any, 0, len(snap.News))
	for _, n := range snap.News {
		headlines = append(headlines, n.Headline())
	}
	list, err := structpb.NewList(headlines)
	if err != nil {
		return nil, err
	}
	s.Fields["headlines"] = structpb.NewListValue(list)
	return s, nil
}

func ResolutionToStruct(res *crisis.Resolution) (*structpb.Struct, error) {
	return ToStruct(res)
}

// ScenarioSummary is the catalog listing shown before a run starts.
type ScenarioSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
}

func ScenariosToStruct(cat *scenario.Catalog) (*structpb.Struct, error) {
	list := make([]ScenarioSummary, 0, cat.Len())
	for _, id := range cat.IDs() {
		s, _ := cat.Get(id)
		list = append(list, ScenarioSummary{ID: s.ID, Title: s.Title, Icon: s.Icon})
	}
	return ToStruct(struct {
		Mode      scenario.Mode     `json:"mode"`
		Scenarios []ScenarioSummary `json:"scenarios"`
	}{cat.Mode, list})
}

// ErrorCode maps an engine error to its wire code.
func ErrorCode(err error) int32 {
	switch {
	case errors.Is(err, crisis.ErrInvalidSelection):
		return CodeInvalidSelection
	case errors.Is(err, crisis.ErrPhaseViolation):
		return CodePhaseViolation
	case errors.Is(err, crisis.ErrNoCrisisAvailable):
		return CodeNoCrisis
	default:
		return CodeInternal
	}
}
