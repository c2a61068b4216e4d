package domain

// ViewContext is the host-provided navigation context: which team and
// channel the user is looking at. It is consumed read-only; the host
// pushes a new value on every navigation.
type ViewContext struct {
	TeamID    string
	ChannelID string
	UserID    string
}

// ViewKind identifies which panel view is showing.
type ViewKind int

// Panel views. Exactly one is active at a time.
const (
	ViewHidden ViewKind = iota
	ViewList
	ViewDetail
)

// String returns the string representation of the view kind.
func (k ViewKind) String() string {
	switch k {
	case ViewHidden:
		return "hidden"
	case ViewList:
		return "list"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ViewState is the visible state of the panel. IncidentID is set only
// when Kind is ViewDetail.
type ViewState struct {
	Kind       ViewKind
	IncidentID string
}
