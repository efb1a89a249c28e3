// Package progress defines the verification stage machine and delivers
// progress events to submitting users over a non-blocking push channel.
package progress

// Stage is a step in the verification stage machine.
type Stage string

const (
	Queued          Stage = "queued"
	Extracting      Stage = "extracting"
	Transcribing    Stage = "transcribing"
	ExtractingText  Stage = "extracting-text"
	AnalyzingFrames Stage = "analyzing-frames"
	Moderating      Stage = "moderating"
	Complete        Stage = "complete"
	Rejected        Stage = "rejected"
	ReviewRequired  Stage = "review-required"
	Error           Stage = "error"
)

var percents = map[Stage]int{
	Queued:          0,
	Extracting:      10,
	Transcribing:    30,
	ExtractingText:  40,
	AnalyzingFrames: 50,
	Moderating:      80,
	Complete:        100,
	Rejected:        100,
	ReviewRequired:  100,
}

// Percent returns the nominal progress for s. Error has no nominal value
// and returns 0; callers keep the last recorded progress instead.
func (s Stage) Percent() int {
	return percents[s]
}

// Terminal reports whether s ends a verification run.
func (s Stage) Terminal() bool {
	switch s {
	case Complete, Rejected, ReviewRequired, Error:
		return true
	default:
		return false
	}
}

func (s Stage) String() string {
	return string(s)
}
