package domain

import (
	"time"
)

// OptionResult is one row of the aggregated tally: an option, its vote count
// and its two percentage metrics. Options with zero ballots are included.
type OptionResult struct {
	OptionID          string    `json:"optionId"`
	Text              string    `json:"text"`
	DetailText        string    `json:"detail_text"`
	IsMain            bool      `json:"isMain"`
	Votes             int       `json:"votes"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	PercentOfAllUsers float64   `json:"percentOfAllUsers"`
	PercentOfVoters   float64   `json:"percentOfVoters"`
}

// VoteResults is a point-in-time aggregation of the whole ledger.
type VoteResults struct {
	TotalUsers int            `json:"totalUsers"`
	TotalVoted int            `json:"totalVoted"`
	Options    []OptionResult `json:"options"`
}
