package config

// Section and key names.
const (
	SectionGeneral = "general"
	SectionAliases = "aliases"

	KeyIgnoreCase = "ignorecase"
	KeyWrapSearch = "wrapsearch"
	KeyLogLevel   = "log-level"
)

// Defaults returns a fresh copy of the built-in settings.
func Defaults() map[string]map[string]any {
	return map[string]map[string]any{
		SectionGeneral: {
			KeyIgnoreCase: true,
			KeyWrapSearch: true,
			KeyLogLevel:   "info",
		},
		SectionAliases: {
			"q": "quit",
		},
	}
}
