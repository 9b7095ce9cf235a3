package domain

import (
	"slices"
	"strings"
)

// VoteType is the action a voter takes on a post or comment.
type VoteType string

const (
	// VoteUp toggles an upvote.
	VoteUp VoteType = "upvote"

	// VoteDown toggles a downvote.
	VoteDown VoteType = "downvote"
)

// ParseVoteType converts the wire value into a VoteType.
// Matching ignores case and surrounding whitespace.
func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(strings.ToLower(strings.TrimSpace(s))) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	default:
		return "", NewValidationErrorWithValue("voteType", "must be upvote or downvote", s)
	}
}

// Stance is the position a single voter holds on an entity.
type Stance int

const (
	// StanceNone means the voter is in neither set.
	StanceNone Stance = iota

	// StanceUp means the voter is an upvoter.
	StanceUp

	// StanceDown means the voter is a downvoter.
	StanceDown
)

// String returns the stance name.
func (s Stance) String() string {
	switch s {
	case StanceUp:
		return "up"
	case StanceDown:
		return "down"
	default:
		return "none"
	}
}

// VoterSet is an unordered set of voter identifiers.
type VoterSet map[string]struct{}

// NewVoterSet builds a set from a list, dropping blanks and duplicates.
func NewVoterSet(ids ...string) VoterSet {
	s := make(VoterSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}

	return s
}

// Has reports membership.
func (s VoterSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order, for storage and responses.
func (s VoterSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}

	slices.Sort(out)

	return out
}

// Votable is the vote state shared by posts and comments.
// Upvoters and Downvoters are disjoint; Score is derived from them.
type Votable struct {
	Upvoters   VoterSet
	Downvoters VoterSet
	Score      int

	// Version increases with every persisted vote change and backs optimistic locking.
	Version int64
}

// NewVotable returns empty vote state.
func NewVotable() Votable {
	return Votable{Upvoters: VoterSet{}, Downvoters: VoterSet{}}
}

// Upvotes is the number of upvoters.
func (v *Votable) Upvotes() int { return len(v.Upvoters) }

// Downvotes is the number of downvoters.
func (v *Votable) Downvotes() int { return len(v.Downvoters) }

// StanceOf reports where the voter currently stands.
func (v *Votable) StanceOf(voterID string) Stance {
	switch {
	case v.Upvoters.Has(voterID):
		return StanceUp
	case v.Downvoters.Has(voterID):
		return StanceDown
	default:
		return StanceNone
	}
}

// Recount sets Score from the voter sets.
func (v *Votable) Recount() {
	v.Score = len(v.Upvoters) - len(v.Downvoters)
}

// CheckInvariants returns an error if a voter sits in both sets or the score drifted.
func (v *Votable) CheckInvariants() error {
	for id := range v.Upvoters {
		if v.Downvoters.Has(id) {
			return NewConflictErrorWithDetails("votes", "voter holds both stances", id)
		}
	}

	if v.Score != len(v.Upvoters)-len(v.Downvoters) {
		return NewConflictError("votes", "score does not match voter sets")
	}

	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (v *Votable) Clone() Votable {
	out := Votable{
		Upvoters:   make(VoterSet, len(v.Upvoters)),
		Downvoters: make(VoterSet, len(v.Downvoters)),
		Score:      v.Score,
		Version:    v.Version,
	}

	for id := range v.Upvoters {
		out.Upvoters[id] = struct{}{}
	}

	for id := range v.Downvoters {
		out.Downvoters[id] = struct{}{}
	}

	return out
}

// VoteOutcome describes what a single ApplyVote call did.
type VoteOutcome struct {
	Previous Stance
	Current  Stance

	// Removed is true when the voter repeated their existing vote and now has no stance.
	Removed bool
}

// Message is the human readable summary returned to clients.
func (o VoteOutcome) Message() string {
	switch {
	case o.Removed:
		return "Vote removed"
	case o.Previous != StanceNone:
		return "Vote updated"
	default:
		return "Vote recorded"
	}
}

// ApplyVote toggles voterID's stance on v.
//
// The voter is first cleared from both sets. A vote of the type they already
// held is an unvote; any other vote lands in the matching set. Score is
// recomputed afterwards.
func ApplyVote(v *Votable, voterID string, voteType VoteType) (VoteOutcome, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return VoteOutcome{}, NewValidationError("username", "is required")
	}

	if voteType != VoteUp && voteType != VoteDown {
		return VoteOutcome{}, NewValidationErrorWithValue("voteType", "must be upvote or downvote", string(voteType))
	}

	if v.Upvoters == nil {
		v.Upvoters = VoterSet{}
	}

	if v.Downvoters == nil {
		v.Downvoters = VoterSet{}
	}

	wasUp := v.Upvoters.Has(voterID)
	wasDown := v.Downvoters.Has(voterID)

	delete(v.Upvoters, voterID)
	delete(v.Downvoters, voterID)

	outcome := VoteOutcome{Previous: StanceNone, Current: StanceNone}
	if wasUp {
		outcome.Previous = StanceUp
	} else if wasDown {
		outcome.Previous = StanceDown
	}

	switch {
	case voteType == VoteUp && !wasUp:
		v.Upvoters[voterID] = struct{}{}
		outcome.Current = StanceUp
	case voteType == VoteDown && !wasDown:
		v.Downvoters[voterID] = struct{}{}
		outcome.Current = StanceDown
	default:
		outcome.Removed = true
	}

	v.Recount()

	return outcome, nil
}
