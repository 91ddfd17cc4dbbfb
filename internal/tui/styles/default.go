package styles

// NewDefaultTheme creates the dark aurora theme.
func NewDefaultTheme() *Theme {
	return &Theme{
		Name:   "aurora",
		IsDark: true,

		// Violet to teal accents
		Primary:   ParseHex("#7e3ff2"),
		Secondary: ParseHex("#03dac5"),
		Tertiary:  ParseHex("#1e293b"),
		Accent:    ParseHex("#a78bfa"),

		// Slate backgrounds
		BgBase:    ParseHex("#0f172a"),
		BgSubtle:  ParseHex("#1e293b"),
		BgOverlay: ParseHex("#334155"),

		FgBase:   ParseHex("#f8fafc"),
		FgMuted:  ParseHex("#94a3b8"),
		FgSubtle: ParseHex("#64748b"),

		Border:      ParseHex("#334155"),
		BorderFocus: ParseHex("#7e3ff2"),

		Success: ParseHex("#34d399"),
		Error:   ParseHex("#f87171"),
		Warning: ParseHex("#fbbf24"),
		Info:    ParseHex("#38bdf8"),
	}
}
