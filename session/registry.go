package session

import (
	"fmt"

	"github.com/kir-gadjello/unichat/api"
)

// ImageProviderID is the only provider offered in image mode, and the only
// one hidden in the others.
const ImageProviderID = "image"

const (
	NoProvidersLabel  = "No providers available"
	DefaultModelLabel = "Default"
	unconfiguredHint  = " — add API key in ⚙️ Settings"
)

// Choice is one entry of a selector.
type Choice struct {
	Value    string
	Label    string
	Disabled bool
}

// Relevant returns the providers offered in mode, in backend order.
func Relevant(providers []api.Provider, mode Mode) []api.Provider {
	var out []api.Provider
	for _, p := range providers {
		if (p.ID == ImageProviderID) == (mode == ModeImage) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultProvider picks the first configured free provider, else the first
// configured one, else the first one.
func DefaultProvider(relevant []api.Provider) (api.Provider, bool) {
	if len(relevant) == 0 {
		return api.Provider{}, false
	}
	for _, p := range relevant {
		if p.Configured && p.Tier == api.TierFree {
			return p, true
		}
	}
	for _, p := range relevant {
		if p.Configured {
			return p, true
		}
	}
	return relevant[0], true
}

func OptionLabel(p api.Provider) string {
	lock := "🔑"
	if p.Configured {
		lock = "✅"
	}
	tier := " [Paid]"
	if p.Tier == api.TierFree {
		tier = " [FREE]"
	}
	return fmt.Sprintf("%s %s%s", lock, p.Name, tier)
}

// ProviderOptions renders the selector entries for mode.
func ProviderOptions(providers []api.Provider, mode Mode) []Choice {
	relevant := Relevant(providers, mode)
	if len(relevant) == 0 {
		return []Choice{{Label: NoProvidersLabel, Disabled: true}}
	}
	opts := make([]Choice, 0, len(relevant))
	for _, p := range relevant {
		opts = append(opts, Choice{Value: p.ID, Label: OptionLabel(p)})
	}
	return opts
}

// ModelOptions lists the models of provider, or the single "Default"
// placeholder when there are none.
func ModelOptions(p *api.Provider) []Choice {
	if p == nil || len(p.Models) == 0 {
		return []Choice{{Value: "", Label: DefaultModelLabel}}
	}
	opts := make([]Choice, 0, len(p.Models))
	for _, m := range p.Models {
		opts = append(opts, Choice{Value: m.ID, Label: m.Name})
	}
	return opts
}

func findProvider(providers []api.Provider, id string) *api.Provider {
	for i := range providers {
		if providers[i].ID == id {
			return &providers[i]
		}
	}
	return nil
}
