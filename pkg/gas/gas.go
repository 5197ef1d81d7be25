package gas

import "fmt"

// Gas identifies one of the monitored gases.
type Gas int

const (
	Methane Gas = iota
	LPG
	CarbonMonoxide
	HydrogenSulfide

	// NumGases is the number of monitored gases.
	NumGases
)

// String returns the configuration name of the gas.
func (g Gas) String() string {
	switch g {
	case Methane:
		return "methane"
	case LPG:
		return "lpg"
	case CarbonMonoxide:
		return "carbon_monoxide"
	case HydrogenSulfide:
		return "hydrogen_sulfide"
	default:
		return fmt.Sprintf("gas(%d)", int(g))
	}
}

// Symbol returns the chemical formula used in report lines.
func (g Gas) Symbol() string {
	switch g {
	case Methane:
		return "CH4"
	case LPG:
		return "LPG"
	case CarbonMonoxide:
		return "CO"
	case HydrogenSulfide:
		return "H2S"
	default:
		return "?"
	}
}

// Parse resolves a configuration name into a Gas.
func Parse(name string) (Gas, error) {
	switch name {
	case "methane":
		return Methane, nil
	case "lpg":
		return LPG, nil
	case "carbon_monoxide":
		return CarbonMonoxide, nil
	case "hydrogen_sulfide":
		return HydrogenSulfide, nil
	default:
		return 0, fmt.Errorf("unknown gas %q", name)
	}
}
