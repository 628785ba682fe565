// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types shared across the quorum bot.

# Decision subjects

Two quorum subject types exist:

  - Election: a yes/no vote over a voter set fixed at creation, finished
    when a percentage threshold is met or mathematically unreachable.
  - ApprovalSubject: a purchase request over a cart, finished when every
    approver in the live registry has approved (unanimity).

Elections are immutable apart from the one-way Finished flag. Approval
subjects hold an ordered, revocable approval list.

# Participants

User and UserGroup carry a platform ID plus a display name. Equality is by
ID. ParseUserMention / ParseGroupMention decode the platform-escaped mention
forms ("<@U123|name>", "<!subteam^S123|@name>").

# Webhook payloads

slack.go declares the inbound payload shapes (slash commands, block actions,
reaction events) with only the fields the handlers read.
*/
package models
