package model

import (
	"encoding/json"
	"errors"
)

// ErrMissingBillID is returned when a search record has no bill_id
var ErrMissingBillID = errors.New("missing required field bill_id")

// Bill represents a single hit from the LegiScan search API.
// Everything except BillID is optional because the API omits fields inconsistently.
type Bill struct {
	Relevance      uint   `json:"relevance"`
	State          string `json:"state,omitempty"`
	BillNumber     string `json:"bill_number,omitempty"`
	BillID         int    `json:"bill_id"`
	ChangeHash     string `json:"change_hash,omitempty"`
	URL            string `json:"url,omitempty"`
	TextURL        string `json:"text_url,omitempty"`
	ResearchURL    string `json:"research_url,omitempty"`
	LastActionDate string `json:"last_action_date,omitempty"`
	LastAction     string `json:"last_action,omitempty"`
	Title          string `json:"title,omitempty"`
}

// UnmarshalJSON decodes a bill, rejecting records without a bill_id.
// Null or absent optional fields decode to their zero value.
func (b *Bill) UnmarshalJSON(data []byte) error {
	type plain Bill
	var aux struct {
		plain
		BillID *int `json:"bill_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.BillID == nil {
		return ErrMissingBillID
	}

	*b = Bill(aux.plain)
	b.BillID = *aux.BillID
	return nil
}

// BillDetail is the extended status record returned by the getBill operation
type BillDetail struct {
	StateLink   string `json:"state_link,omitempty"`
	Status      Status `json:"status"`
	StatusDate  string `json:"status_date,omitempty"`
	Description string `json:"description,omitempty"`
}
