package vehicle

import "slices"

// Profile is the pilot's cosmetic ship customization.
type Profile struct {
	Hull  string `json:"hull"`
	Paint string `json:"paint"`
	Trail string `json:"trail"`
}

// Selectable customization options. The first entry of each is the default.
var (
	Hulls  = []string{"scout", "interceptor", "hauler"}
	Paints = []string{"cobalt", "ember", "jade", "ivory"}
	Trails = []string{"rainbow", "ion", "none"}
)

// DefaultProfile is used when nothing valid is stored.
func DefaultProfile() Profile {
	return Profile{Hull: Hulls[0], Paint: Paints[0], Trail: Trails[0]}
}

// Normalize replaces unknown options with their defaults.
func (p Profile) Normalize() Profile {
	d := DefaultProfile()
	if !slices.Contains(Hulls, p.Hull) {
		p.Hull = d.Hull
	}
	if !slices.Contains(Paints, p.Paint) {
		p.Paint = d.Paint
	}
	if !slices.Contains(Trails, p.Trail) {
		p.Trail = d.Trail
	}
	return p
}
