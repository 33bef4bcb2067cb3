package events

const (
	// KindThemeChanged identifies a theme/style switch.
	KindThemeChanged Kind = "theme_changed"
)

// ThemeChanged asks consumers to re-apply styling. Repeats are safe.
type ThemeChanged struct {
	Base
	ThemeID string
}

// NewThemeChanged creates a theme changed event.
func NewThemeChanged(themeID string) ThemeChanged {
	return ThemeChanged{Base: NewBase(KindThemeChanged), ThemeID: themeID}
}
