package wifi

// maxMCSIndex is the highest HT MCS index defined by 802.11n.
const maxMCSIndex = 32

// Per spatial stream data rates in Mbit/s for HT MCS 0-7. Values are whole
// Mbit/s approximations of the 802.11n rates (6.5 is 6, 21.7 is 22).
var (
	// 20MHz, 800ns guard interval.
	rates20LongGI = [8]float64{6, 13, 19, 26, 39, 52, 58, 65}

	// 20MHz, 400ns guard interval.
	rates20ShortGI = [8]float64{7, 14, 22, 29, 43, 58, 65, 72}

	// 40MHz, 800ns guard interval.
	rates40LongGI = [8]float64{13, 27, 40, 54, 81, 108, 121, 135}

	// 40MHz, 400ns guard interval.
	rates40ShortGI = [8]float64{15, 30, 45, 60, 90, 120, 135, 150}
)

// MCSRate returns the data rate in Mbit/s of an HT MCS index for the given
// guard interval and channel width configuration.
//
// Indices 0-31 are split into four bands of eight, one band per spatial
// stream count.  Indices outside of those bands, including the MCS 32 HT
// duplicate mode, have no entry and report a rate of 0.
func MCSRate(index uint, shortGI20, shortGI40, is40MHz bool) float64 {
	if index >= maxMCSIndex {
		return 0
	}

	streams := float64(index/8 + 1)
	sub := index % 8

	var table *[8]float64
	switch {
	case is40MHz && shortGI40:
		table = &rates40ShortGI
	case is40MHz:
		table = &rates40LongGI
	case shortGI20:
		table = &rates20ShortGI
	default:
		table = &rates20LongGI
	}

	return table[sub] * streams
}
