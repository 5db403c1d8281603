package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Summary is the pagination metadata attached to every search page under the "summary" key
type Summary struct {
	Page        string  `json:"page"`
	Range       string  `json:"range"`
	Relevancy   string  `json:"relevancy"`
	Count       FlexInt `json:"count"`
	PageCurrent FlexInt `json:"page_current"`
	PageTotal   FlexInt `json:"page_total"`
}

// FlexInt accepts a JSON number, a numeric string, or null
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*n = 0
		return nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*n = FlexInt(v)
	return nil
}

func (n FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(n))
}
