package event

import "time"

// ExtensionState is a point-in-time snapshot of one agent extension.
//
// StatusCode and StatusText must agree with the fixed device-state
// mapping below; producers should build states via StatusForCode so
// the pair can never drift.
type ExtensionState struct {
	Extension       string       `json:"extension"`
	AgentName       string       `json:"agent_name"`
	Availability    Availability `json:"availability_status"`
	StatusCode      int          `json:"status_code"`
	StatusText      string       `json:"status_text"`
	StatusChangedAt time.Time    `json:"status_changed_at"`
	IsActive        bool         `json:"is_active"`
}

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityRinging   Availability = "ringing"
	AvailabilityOffline   Availability = "offline"
)

// Status couples the numeric device-state code with its human label and
// the coarse availability bucket the dashboard filters on.
type Status struct {
	Code         int
	Text         string
	Availability Availability
}

// Device-state codes follow the PBX convention.
var statusByCode = map[int]Status{
	0:  {0, "Idle", AvailabilityAvailable},
	1:  {1, "In Use", AvailabilityBusy},
	2:  {2, "Busy", AvailabilityBusy},
	4:  {4, "Unavailable", AvailabilityOffline},
	8:  {8, "Ringing", AvailabilityRinging},
	16: {16, "On Hold", AvailabilityBusy},
}

// StatusForCode resolves a device-state code to its canonical status.
func StatusForCode(code int) (Status, bool) {
	s, ok := statusByCode[code]
	return s, ok
}

func (s ExtensionState) validate() error {
	if s.Extension == "" {
		return invalidf("extension state: extension is required")
	}
	st, ok := statusByCode[s.StatusCode]
	if !ok {
		return invalidf("extension state: unknown status_code %d", s.StatusCode)
	}
	if s.StatusText != st.Text {
		return invalidf("extension state: status_text %q does not match code %d (%s)", s.StatusText, s.StatusCode, st.Text)
	}
	if s.Availability != st.Availability {
		return invalidf("extension state: availability_status %q does not match code %d (%s)", s.Availability, s.StatusCode, st.Availability)
	}
	return nil
}
