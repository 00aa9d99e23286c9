package models

const DefaultLanguage = "English"

// Language is a summary language offered in forms. Name is what the
// backend receives; Native and Flag are for display only.
type Language struct {
	Name   string
	Native string
	Flag   string
}

var Languages = []Language{
	{Name: "English", Native: "English", Flag: "🇬🇧"},
	{Name: "Spanish", Native: "Español", Flag: "🇪🇸"},
	{Name: "French", Native: "Français", Flag: "🇫🇷"},
	{Name: "German", Native: "Deutsch", Flag: "🇩🇪"},
	{Name: "Japanese", Native: "日本語", Flag: "🇯🇵"},
	{Name: "Chinese", Native: "中文", Flag: "🇨🇳"},
	{Name: "Hindi", Native: "हिन्दी", Flag: "🇮🇳"},
	{Name: "Portuguese", Native: "Português", Flag: "🇵🇹"},
	{Name: "Russian", Native: "Русский", Flag: "🇷🇺"},
	{Name: "Arabic", Native: "العربية", Flag: "🇸🇦"},
}
