package ui

// Status is where a suite is in a generate run.
type Status uint8

const (
	StatusQueued Status = iota
	StatusBuilding
	StatusWriting
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusBuilding:
		return "building"
	case StatusWriting:
		return "writing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return ""
}

// Event reports progress of one suite. Files and Total count fixture
// files handled so far and in the whole suite.
type Event struct {
	Suite  string
	Status Status
	Files  int
	Total  int
	Note   string
}
