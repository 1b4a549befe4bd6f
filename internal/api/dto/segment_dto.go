package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/call-console/internal/domain"
)

// SegmentRow is the snake_case wire representation of a transcript segment.
type SegmentRow struct {
	ID        string    `json:"id"`
	CallID    string    `json:"call_id"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	IsFinal   bool      `json:"is_final"`
	Timestamp time.Time `json:"timestamp"`
}

// ToDomain validates the row and converts it to a domain segment.
func (r SegmentRow) ToDomain() (domain.TranscriptSegment, error) {
	if r.ID == "" {
		return domain.TranscriptSegment{}, newMappingError("segment", "id", "missing")
	}
	if r.CallID == "" {
		return domain.TranscriptSegment{}, newMappingError("segment", "call_id", "missing")
	}
	speaker := domain.Speaker(r.Speaker)
	if r.Speaker == "" {
		speaker = domain.SpeakerUnknown
	} else if !speaker.Valid() {
		return domain.TranscriptSegment{}, newMappingError("segment", "speaker", fmt.Sprintf("unknown value %q", r.Speaker))
	}

	return domain.TranscriptSegment{
		ID:        r.ID,
		CallID:    r.CallID,
		Speaker:   speaker,
		Text:      r.Text,
		IsFinal:   r.IsFinal,
		Timestamp: r.Timestamp,
	}, nil
}

// SegmentRowFromDomain converts a domain segment to its wire shape.
func SegmentRowFromDomain(segment domain.TranscriptSegment) SegmentRow {
	return SegmentRow{
		ID:        segment.ID,
		CallID:    segment.CallID,
		Speaker:   string(segment.Speaker),
		Text:      segment.Text,
		IsFinal:   segment.IsFinal,
		Timestamp: segment.Timestamp,
	}
}

// SegmentRowsFromDomain converts a segment list for a response body.
func SegmentRowsFromDomain(segments []domain.TranscriptSegment) []SegmentRow {
	rows := make([]SegmentRow, len(segments))
	for i, segment := range segments {
		rows[i] = SegmentRowFromDomain(segment)
	}
	return rows
}
