// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
	"time"
)

// Vote choice constants
const (
	ChoiceYes = "yes"
	ChoiceNo  = "no"
)

var ErrBadMention = errors.New("malformed mention")

// User identifies a chat participant. Equality is by ID; Name is the
// display form only.
type User struct {
	Name string `json:"name"`
	ID   string `json:"uid"`
}

// ParseUserMention parses the platform-escaped form "<@U123|name>".
func ParseUserMention(escaped string) (User, error) {
	if !strings.HasPrefix(escaped, "<@") || !strings.HasSuffix(escaped, ">") {
		return User{}, ErrBadMention
	}
	id, name, ok := strings.Cut(escaped[2:len(escaped)-1], "|")
	if !ok || id == "" {
		return User{}, ErrBadMention
	}
	return User{Name: name, ID: id}, nil
}

// Mention renders the user for outbound messages.
func (u User) Mention() string {
	return "<@" + u.Name + ">"
}

// UserGroup identifies a group of participants. Groups are resolved to
// individual user IDs upstream before a decision is created.
type UserGroup struct {
	Name string `json:"name"`
	ID   string `json:"ugid"`
}

// ParseGroupMention parses the platform-escaped form "<!subteam^S123|@name>".
func ParseGroupMention(escaped string) (UserGroup, error) {
	if !strings.HasPrefix(escaped, "<!subteam^") || !strings.HasSuffix(escaped, ">") {
		return UserGroup{}, ErrBadMention
	}
	id, name, ok := strings.Cut(escaped[len("<!subteam^"):len(escaped)-1], "|@")
	if !ok || id == "" {
		return UserGroup{}, ErrBadMention
	}
	return UserGroup{Name: name, ID: id}, nil
}

// Mention renders the group for outbound messages.
func (g UserGroup) Mention() string {
	return "<!subteam^" + g.ID + "|@" + g.Name + ">"
}

// Election is a percentage-threshold quorum subject over a voter set fixed
// at creation. Finished transitions false->true exactly once.
type Election struct {
	ID              string   `json:"id"`
	ElecteeID       string   `json:"electee_uid"`
	Position        string   `json:"position"`
	ThresholdPct    int      `json:"threshold_pct"`
	AllowedVoterIDs []string `json:"allowed_voter_uids"`
	CreatorID       string   `json:"creator_uid"`
	Finished        bool     `json:"finished"`
}

// AllowsVoter reports whether the voter is in the allowed voter set.
func (e Election) AllowsVoter(voterID string) bool {
	for _, id := range e.AllowedVoterIDs {
		if id == voterID {
			return true
		}
	}
	return false
}

// Vote is one voter's immutable yes/no in an election. Exactly one vote
// per (election, voter) is enforced at acceptance time.
type Vote struct {
	VoterID      string `json:"voter_uid"`
	ElectionID   string `json:"election_id"`
	Yes          bool   `json:"yes"`
	Confirmation string `json:"confirmation"`
}

// Choice renders the vote choice as "yes" or "no".
func (v Vote) Choice() string {
	if v.Yes {
		return ChoiceYes
	}
	return ChoiceNo
}

// Approval is one approver's revocable sign-off on a purchase request.
// Timestamp is the opaque platform event timestamp, an ordering hint only.
type Approval struct {
	Approver  User   `json:"approver"`
	Timestamp string `json:"ts"`
}

// ApprovalSubject is the unanimity quorum subject for one cart's purchase
// request. MessageTS is the timestamp token of the announcement message the
// platform routes reactions back through.
type ApprovalSubject struct {
	CartName  string     `json:"cart"`
	MessageTS string     `json:"ts"`
	BegunAt   time.Time  `json:"begun_at"`
	Approvals []Approval `json:"approvals"`
}

// HasApproval reports whether the approver already has an entry. Duplicate
// suppression is the caller's job; the add operation itself appends
// unconditionally, mirroring reaction add/remove semantics.
func (s ApprovalSubject) HasApproval(approverID string) bool {
	for _, a := range s.Approvals {
		if a.Approver.ID == approverID {
			return true
		}
	}
	return false
}

// ApproverEntry is one row of the process-wide approver registry.
type ApproverEntry struct {
	Approver User `json:"approver"`
	AddedBy  User `json:"added_by"`
}

// Cart is the external resource purchase approvals are scoped to.
type Cart struct {
	Name      string    `json:"name"`
	CreatedBy User      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is one part in a cart.
type CartItem struct {
	ID      string `json:"id"`
	Part    string `json:"part"`
	Qty     int    `json:"qty"`
	AddedBy User   `json:"added_by"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
