// Package plugin is the host-facing adapter around the slap delay
// engine: plugin metadata, the stereo bus layout, the two automatable
// parameters and the block processor a host wrapper drives.
package plugin

// Info describes the plugin to a host.
type Info struct {
	ID       string
	Name     string
	Version  string
	Vendor   string
	URL      string
	Email    string
	Category string
}

// DefaultInfo returns the slap delay descriptor.
func DefaultInfo() Info {
	return Info{
		ID:       "com.cwbudde.slapdelay",
		Name:     "Slap Delay",
		Version:  "1.0.0",
		Vendor:   "cwbudde",
		URL:      "https://github.com/cwbudde/algo-slapdelay",
		Email:    "info@cwbudde.dev",
		Category: "Fx|Delay",
	}
}
