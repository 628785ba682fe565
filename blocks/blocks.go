// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package blocks

// Block Kit element types, declared with only the fields the bot emits.

type Style struct {
	Bold   bool `json:"bold,omitempty"`
	Italic bool `json:"italic,omitempty"`
}

// RichTextElement is either a text run or a user mention.
type RichTextElement struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Style  *Style `json:"style,omitempty"`
}

type RichTextSection struct {
	Type     string            `json:"type"`
	Elements []RichTextElement `json:"elements"`
}

type RichText struct {
	Type     string            `json:"type"`
	Elements []RichTextSection `json:"elements"`
}

type ButtonText struct {
	Type  string `json:"type"`
	Emoji bool   `json:"emoji"`
	Text  string `json:"text"`
}

type Button struct {
	Type     string     `json:"type"`
	Text     ButtonText `json:"text"`
	Style    string     `json:"style,omitempty"`
	Value    string     `json:"value"`
	ActionID string     `json:"action_id"`
}

type Actions struct {
	Type     string   `json:"type"`
	Elements []Button `json:"elements"`
}

func text(s string) RichTextElement {
	return RichTextElement{Type: "text", Text: s}
}

func bold(s string) RichTextElement {
	return RichTextElement{Type: "text", Text: s, Style: &Style{Bold: true}}
}

func italic(s string) RichTextElement {
	return RichTextElement{Type: "text", Text: s, Style: &Style{Italic: true}}
}

func user(uid string) RichTextElement {
	return RichTextElement{Type: "user", UserID: uid}
}

func richText(elements []RichTextElement) RichText {
	return RichText{
		Type: "rich_text",
		Elements: []RichTextSection{
			{Type: "rich_text_section", Elements: elements},
		},
	}
}

func button(label, actionID string, danger bool) Button {
	style := "primary"
	if danger {
		style = "danger"
	}
	return Button{
		Type:     "button",
		Text:     ButtonText{Type: "plain_text", Emoji: true, Text: label},
		Style:    style,
		Value:    label,
		ActionID: actionID,
	}
}
