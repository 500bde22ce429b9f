package mapper

// Outcome is the per-leaf result of a transfer decision. It is reported and
// counted, never persisted.
type Outcome int

const (
	// SkippedAlreadyRemote: upload leaf is already an object-store URL.
	SkippedAlreadyRemote Outcome = iota
	// SkippedAlreadyLocal: download leaf is not an object-store URL.
	SkippedAlreadyLocal
	// SkippedExists: the target already exists locally (resume) or remotely (skip_existing).
	SkippedExists
	Transferred
	Failed
)

var outcomeNames = [...]string{
	SkippedAlreadyRemote: "skipped_already_remote",
	SkippedAlreadyLocal:  "skipped_already_local",
	SkippedExists:        "skipped_exists",
	Transferred:          "transferred",
	Failed:               "failed",
}

// Outcomes lists every outcome in declaration order.
var Outcomes = []Outcome{SkippedAlreadyRemote, SkippedAlreadyLocal, SkippedExists, Transferred, Failed}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}
