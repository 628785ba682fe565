// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package blocks renders outbound messages: Block Kit structures for the
rich election messages and plain mrkdwn text for the cart and approval
announcements.

The rendering helpers are pure formatting; they never touch storage. The
election announcement is the one place button action ids enter the world,
built with auth.ButtonActionID so the interaction handler can route clicks
back without any registration step.
*/
package blocks
