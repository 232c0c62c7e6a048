package dto

import (
	"bytes"
	"encoding/json"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// NullableString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the field was present in the payload.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// PageQuery is the paging and sorting part of a list request.
type PageQuery struct {
	Skip   int    `form:"skip" binding:"omitempty,min=0"`
	Take   int    `form:"take" binding:"omitempty,min=0,max=500"`
	SortBy string `form:"order_by"`
}
