package lexicon

// Default returns the built-in persuasion-cue lexicon. Categories follow
// Cialdini-style influence principles plus a brand-impersonation list;
// each holds multi-word phrases first, then single-word fallbacks.
func Default() *Lexicon {
	return New([]Category{
		{Name: "authority", Phrases: []string{
			"official notice", "account review team", "security team", "compliance team",
			"verified badge", "support team", "customer service", "help center",
			"administrator", "admin", "security", "support", "service", "notice",
		}},
		{Name: "urgency", Phrases: []string{
			"urgent action required", "act now", "immediate action", "final notice",
			"expires soon", "deadline", "verify within 24 hours",
			"urgent", "immediately", "now", "today", "minutes", "hours", "24 hours",
		}},
		{Name: "scarcity", Phrases: []string{
			"only a few left", "limited availability", "limited slots", "while supplies last",
			"limited", "last chance", "only today",
		}},
		{Name: "fear_loss", Phrases: []string{
			"unusual activity detected", "unauthorised login", "unauthorized login",
			"your account is locked", "payment failed", "suspicious activity",
			"security alert", "fraud alert",
			"suspended", "suspension", "locked", "disabled", "restricted",
			"compromised", "violation", "failed", "failure", "alert", "warning",
		}},
		{Name: "consistency_commitment", Phrases: []string{
			"confirm your identity", "verify your account", "update your details",
			"complete your profile", "continue to your account",
			"confirm", "verify", "update", "continue", "proceed", "submit", "resolve",
			"login", "sign in", "reset", "password", "identity", "account",
		}},
		{Name: "similarity_socialproof", Phrases: []string{
			"people like you", "as recommended", "popular choice", "trending now",
			"recommended", "popular", "trending",
		}},
		{Name: "reward_reciprocity", Phrases: []string{
			"claim your reward", "you have won", "exclusive offer", "congratulations",
			"reward", "bonus", "voucher", "gift", "prize",
		}},
		{Name: "brand_trust", Phrases: []string{
			"amazon", "barclays", "facebook", "meta", "instagram", "mastercard", "netflix", "paypal",
			"apple", "microsoft", "google", "coinbase", "uphold", "telenet",
		}},
	})
}
