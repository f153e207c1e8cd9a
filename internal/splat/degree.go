package splat

// MaxDegree is the highest supported spherical harmonics degree.
const MaxDegree = 3

// MaxComponents is the number of harmonic components at MaxDegree.
const MaxComponents = 45

// Flags is the per-cloud flags byte.
type Flags uint8

// FlagAntialiased marks a cloud trained with antialiasing.
const FlagAntialiased Flags = 1 << 0

// Antialiased reports whether FlagAntialiased is set.
func (f Flags) Antialiased() bool { return f&FlagAntialiased != 0 }

// DimForDegree returns the number of RGB coefficients beyond DC for degree.
func DimForDegree(degree int) int {
	switch degree {
	case 0:
		return 0
	case 1:
		return 3
	case 2:
		return 8
	case 3:
		return 15
	default:
		return 0
	}
}

// DegreeForDim returns the highest degree whose coefficients fit in dim.
func DegreeForDim(dim int) int {
	switch {
	case dim < 3:
		return 0
	case dim < 8:
		return 1
	case dim < 15:
		return 2
	default:
		return 3
	}
}

func validDegree(degree int) bool {
	return degree >= 0 && degree <= MaxDegree
}
