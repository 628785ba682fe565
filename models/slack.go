// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Inbound webhook payload types. Field names follow the Slack wire format;
// only the fields the handlers read are declared.

// SlashCommand is the form-encoded body of a slash command invocation.
type SlashCommand struct {
	Command     string
	Text        string
	UserID      string
	UserName    string
	ChannelID   string
	ChannelName string
	ResponseURL string
}

// Invoker returns the user who ran the command.
func (c SlashCommand) Invoker() User {
	return User{Name: c.UserName, ID: c.UserID}
}

// InteractionPayload is the JSON "payload" field of an interactive
// (block_actions) callback.
type InteractionPayload struct {
	Type    string `json:"type"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Actions []InteractionAction `json:"actions"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	ResponseURL string `json:"response_url"`
}

// InteractionAction is one triggered action inside an interaction payload.
// ActionID carries the compound "{electionID}_yes" / "{electionID}_no" token.
type InteractionAction struct {
	ActionID string `json:"action_id"`
	Value    string `json:"value"`
}

// EventCallback is the JSON body of an Events API delivery, including the
// url_verification handshake.
type EventCallback struct {
	Type      string        `json:"type"`
	Challenge string        `json:"challenge,omitempty"`
	Event     ReactionEvent `json:"event"`
}

// ReactionEvent is a reaction_added / reaction_removed event.
type ReactionEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"user"`
	Reaction string `json:"reaction"`
	EventTS  string `json:"event_ts"`
	Item     struct {
		Type    string `json:"type"`
		Channel string `json:"channel"`
		TS      string `json:"ts"`
	} `json:"item"`
}

// URLVerificationResponse answers the Events API handshake.
type URLVerificationResponse struct {
	Challenge string `json:"challenge"`
}

// CommandReply is the immediate JSON response to a slash command.
type CommandReply struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
	Blocks       []any  `json:"blocks,omitempty"`
}
