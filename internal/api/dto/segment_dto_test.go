package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/call-console/internal/domain"
)

func validSegmentRow() SegmentRow {
	return SegmentRow{
		ID:        "s1",
		CallID:    "c1",
		Speaker:   "caller",
		Text:      "Hello",
		IsFinal:   true,
		Timestamp: time.Date(2024, 6, 1, 10, 0, 5, 0, time.UTC),
	}
}

func TestSegmentRowToDomain(t *testing.T) {
	segment, err := validSegmentRow().ToDomain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segment.ID != "s1" || segment.CallID != "c1" || segment.Speaker != domain.SpeakerCaller {
		t.Errorf("unexpected mapping result: %+v", segment)
	}
}

func TestSegmentRowDefaultsSpeakerToUnknown(t *testing.T) {
	row := validSegmentRow()
	row.Speaker = ""

	segment, err := row.ToDomain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segment.Speaker != domain.SpeakerUnknown {
		t.Errorf("expected unknown speaker, got %q", segment.Speaker)
	}
}

func TestSegmentRowRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SegmentRow)
		field  string
	}{
		{"missing id", func(r *SegmentRow) { r.ID = "" }, "id"},
		{"missing call id", func(r *SegmentRow) { r.CallID = "" }, "call_id"},
		{"invalid speaker", func(r *SegmentRow) { r.Speaker = "robot" }, "speaker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validSegmentRow()
			tt.mutate(&row)

			_, err := row.ToDomain()
			if err == nil {
				t.Fatal("expected mapping error, got nil")
			}
			var mapErr *MappingError
			if !errors.As(err, &mapErr) {
				t.Fatalf("expected MappingError, got %T", err)
			}
			if mapErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, mapErr.Field)
			}
		})
	}
}
