package domain

import (
	"bytes"
	"encoding/json"
)

type OptionCount struct {
	Option string
	Votes  int64
}

// Counts keeps option order when encoded as a JSON object.
type Counts []OptionCount

func (c Counts) Get(option string) (int64, bool) {
	for _, oc := range c {
		if oc.Option == option {
			return oc.Votes, true
		}
	}
	return 0, false
}

func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, oc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(oc.Option)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(oc.Votes)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Tally struct {
	Poll   *Poll  `json:"poll"`
	Counts Counts `json:"counts"`
	Total  int64  `json:"total"`
}

// TallyVotes lays votes out over the poll's options. Options without votes
// report zero, votes for labels no longer offered are ignored, and a label
// listed twice is counted once at its first position.
func TallyVotes(poll *Poll, votesByOption map[string]int64) Tally {
	t := Tally{Poll: poll, Counts: Counts{}}
	if poll == nil {
		return t
	}

	seen := make(map[string]bool, len(poll.Options))
	for _, opt := range poll.Options {
		if seen[opt] {
			continue
		}
		seen[opt] = true
		n := votesByOption[opt]
		t.Counts = append(t.Counts, OptionCount{Option: opt, Votes: n})
		t.Total += n
	}
	return t
}
