package model

import (
	"encoding/json"
	"fmt"
)

// Status is the legislative progress code reported by getBill
type Status int

const (
	StatusNotAvailable Status = iota
	StatusIntroduced
	StatusEngrossed
	StatusEnrolled
	StatusPassed
	StatusVetoed
	StatusFailed
)

var statusNames = map[Status]string{
	StatusNotAvailable: "N/A",
	StatusIntroduced:   "Introduced",
	StatusEngrossed:    "Engrossed",
	StatusEnrolled:     "Enrolled",
	StatusPassed:       "Passed",
	StatusVetoed:       "Vetoed",
	StatusFailed:       "Failed",
}

// StatusFromCode converts a wire code into a Status, rejecting unknown codes
func StatusFromCode(code int) (Status, error) {
	s := Status(code)
	if _, ok := statusNames[s]; !ok {
		return 0, fmt.Errorf("unknown bill status code %d", code)
	}
	return s, nil
}

// Code returns the integer sent over the wire
func (s Status) Code() int {
	return int(s)
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown bill status code %d", int(s))
	}
	return json.Marshal(int(s))
}

func (s *Status) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StatusNotAvailable
		return nil
	}

	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("bill status: %w", err)
	}

	parsed, err := StatusFromCode(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
