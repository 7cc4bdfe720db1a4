package plugin

// BusDirection tells input buses from output buses.
type BusDirection int

const (
	BusInput BusDirection = iota
	BusOutput
)

// String returns the direction name.
func (d BusDirection) String() string {
	if d == BusInput {
		return "input"
	}
	return "output"
}

// BusInfo describes one audio bus.
type BusInfo struct {
	Name      string
	Direction BusDirection
	Channels  int
}

// StereoLayout returns the fixed stereo-in/stereo-out bus layout the
// slap delay negotiates with a host.
func StereoLayout() []BusInfo {
	return []BusInfo{
		{Name: "Stereo In", Direction: BusInput, Channels: 2},
		{Name: "Stereo Out", Direction: BusOutput, Channels: 2},
	}
}
