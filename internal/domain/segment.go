package domain

import "time"

// Speaker identifies the party an utterance is attributed to.
type Speaker string

const (
	SpeakerCaller  Speaker = "caller"
	SpeakerAgent   Speaker = "agent"
	SpeakerUnknown Speaker = "unknown"
)

// Valid reports whether the speaker is one of the known values.
func (s Speaker) Valid() bool {
	switch s {
	case SpeakerCaller, SpeakerAgent, SpeakerUnknown:
		return true
	}
	return false
}

// TranscriptSegment is one transcribed utterance belonging to exactly one
// call. A non-final segment is provisional and may later be replaced by a
// final version carrying the same ID.
type TranscriptSegment struct {
	ID        string
	CallID    string
	Speaker   Speaker
	Text      string
	IsFinal   bool
	Timestamp time.Time
}
