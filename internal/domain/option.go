package domain

import (
	"time"
)

// VoteOption is a single choice voters can pick. Main options are seeded at
// bootstrap and always listed first; the rest are created ad hoc from
// free-text submissions. OptionID is the external identifier; the storage
// row id never leaves the repository layer.
type VoteOption struct {
	ID         int64     `json:"-"`
	OptionID   string    `json:"optionId"`
	Text       string    `json:"text"`
	DetailText string    `json:"detail_text"`
	IsMain     bool      `json:"isMain"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// OptionTally is a vote option joined with its current ballot count.
type OptionTally struct {
	VoteOption
	Votes int `json:"votes"`
}

// MainOptionsResponse is the payload for the main option listing endpoint.
type MainOptionsResponse struct {
	Items []VoteOption `json:"items"`
}

// SubmitVoteRequest carries either an existing option reference or the text
// for a new custom option. OptionID wins when both are present.
type SubmitVoteRequest struct {
	OptionID     string `json:"optionId"`
	CustomText   string `json:"customText"`
	CustomDetail string `json:"customDetail"`
}

// SubmitVoteResponse returns the recorded ballot and the option it points at.
type SubmitVoteResponse struct {
	Message string      `json:"message"`
	Vote    *Ballot     `json:"vote"`
	Option  *VoteOption `json:"option"`
}
