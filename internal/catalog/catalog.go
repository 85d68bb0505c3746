// Package catalog holds the fixed option lists offered on the form.
package catalog

import (
	"strings"

	"github.com/jonathan/bio-generator/internal/types"
)

// Country is a selectable location.
type Country struct {
	Name string
	Flag string
}

// Label is the text shown in the dropdown and embedded in prompts.
func (c Country) Label() string {
	return c.Name + " " + c.Flag
}

var countries = []Country{
	{"Argentina", "🇦🇷"},
	{"Australia", "🇦🇺"},
	{"Brazil", "🇧🇷"},
	{"Canada", "🇨🇦"},
	{"China", "🇨🇳"},
	{"Egypt", "🇪🇬"},
	{"France", "🇫🇷"},
	{"Germany", "🇩🇪"},
	{"Ghana", "🇬🇭"},
	{"India", "🇮🇳"},
	{"Indonesia", "🇮🇩"},
	{"Ireland", "🇮🇪"},
	{"Italy", "🇮🇹"},
	{"Japan", "🇯🇵"},
	{"Kenya", "🇰🇪"},
	{"Mexico", "🇲🇽"},
	{"Netherlands", "🇳🇱"},
	{"New Zealand", "🇳🇿"},
	{"Nigeria", "🇳🇬"},
	{"Norway", "🇳🇴"},
	{"Pakistan", "🇵🇰"},
	{"Philippines", "🇵🇭"},
	{"Poland", "🇵🇱"},
	{"Portugal", "🇵🇹"},
	{"Singapore", "🇸🇬"},
	{"South Africa", "🇿🇦"},
	{"South Korea", "🇰🇷"},
	{"Spain", "🇪🇸"},
	{"Sweden", "🇸🇪"},
	{"Switzerland", "🇨🇭"},
	{"Thailand", "🇹🇭"},
	{"Turkey", "🇹🇷"},
	{"United Arab Emirates", "🇦🇪"},
	{"United Kingdom", "🇬🇧"},
	{"United States", "🇺🇸"},
	{"Vietnam", "🇻🇳"},
}

// Countries returns the selectable countries in display order.
// The returned slice is a copy.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// Lookup finds a country by name, ignoring case and surrounding whitespace.
// A dropdown label ("Japan 🇯🇵") is accepted as well.
func Lookup(name string) (Country, bool) {
	name = strings.TrimSpace(name)
	for _, c := range countries {
		if strings.EqualFold(c.Name, name) || name == c.Label() {
			return c, true
		}
	}
	return Country{}, false
}

// Vibes returns the selectable vibes in display order.
func Vibes() []types.Vibe {
	out := make([]types.Vibe, len(types.Vibes))
	copy(out, types.Vibes)
	return out
}

// Options returns the option lists in API form.
func Options() types.OptionsResponse {
	opts := types.OptionsResponse{
		Countries: make([]types.CountryOption, 0, len(countries)),
		Vibes:     Vibes(),
	}
	for _, c := range countries {
		opts.Countries = append(opts.Countries, types.CountryOption{
			Name:  c.Name,
			Flag:  c.Flag,
			Label: c.Label(),
		})
	}
	return opts
}
