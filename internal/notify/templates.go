package notify

import "fmt"

// 文案与原平台保持一致，To 由调用方填

func Welcome(to, name string, points int) Message {
	return Message{
		To:      to,
		Subject: "Welcome to ReWear!",
		Text: fmt.Sprintf("Welcome %s! Your account has been created successfully. "+
			"You've been awarded %d points to get started!", name, points),
		HTML: fmt.Sprintf("<h2>Welcome to ReWear, %s!</h2>"+
			"<p>Your account has been created successfully.</p>"+
			"<p>You've been awarded <strong>%d points</strong> to get started!</p>", name, points),
	}
}

func SwapRequested(to, requesterName, itemTitle string) Message {
	return Message{
		To:      to,
		Subject: "New Swap Request",
		Text: fmt.Sprintf("%s has requested to swap for your item %q. "+
			"Check your dashboard to respond.", requesterName, itemTitle),
		HTML: fmt.Sprintf("<h2>New Swap Request</h2>"+
			"<p><strong>%s</strong> has requested to swap for your item <strong>%q</strong>.</p>",
			requesterName, itemTitle),
	}
}

func SwapAccepted(to, ownerName, itemTitle string) Message {
	return Message{
		To:      to,
		Subject: "Swap Request Accepted!",
		Text: fmt.Sprintf("Great news! %s has accepted your swap request for %q.",
			ownerName, itemTitle),
		HTML: fmt.Sprintf("<h2>Swap Request Accepted!</h2>"+
			"<p>Great news! <strong>%s</strong> has accepted your swap request for <strong>%q</strong>.</p>",
			ownerName, itemTitle),
	}
}

func SwapRejected(to, ownerName, itemTitle, reason string) Message {
	text := fmt.Sprintf("%s has declined your swap request for %q.", ownerName, itemTitle)
	if reason != "" {
		text += " Reason: " + reason
	}
	return Message{
		To:      to,
		Subject: "Swap Request Update",
		Text:    text,
		HTML: fmt.Sprintf("<h2>Swap Request Update</h2>"+
			"<p><strong>%s</strong> has declined your swap request for <strong>%q</strong>.</p>"+
			"<p><strong>Reason:</strong> %s</p>", ownerName, itemTitle, reason),
	}
}

func ItemApproved(to, itemTitle string) Message {
	return Message{
		To:      to,
		Subject: "Item Approved!",
		Text:    fmt.Sprintf("Your item %q has been approved and is now live on the platform.", itemTitle),
		HTML: fmt.Sprintf("<h2>Item Approved!</h2>"+
			"<p>Your item <strong>%q</strong> has been approved and is now live on the platform.</p>", itemTitle),
	}
}

func ItemRejected(to, itemTitle, reason string) Message {
	return Message{
		To:      to,
		Subject: "Item Review Update",
		Text:    fmt.Sprintf("Your item %q was not approved. Reason: %s", itemTitle, reason),
		HTML: fmt.Sprintf("<h2>Item Review Update</h2>"+
			"<p>Your item <strong>%q</strong> was not approved.</p>"+
			"<p><strong>Reason:</strong> %s</p>", itemTitle, reason),
	}
}
