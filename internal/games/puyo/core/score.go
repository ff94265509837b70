package core

// Scoring tables follow the classic ruleset literally; they are not derived.
var (
	chainBonusTable      = []int{0, 8, 16, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320}
	connectionBonusTable = []int{0, 2, 3, 4, 5, 6, 7, 10}
	colorBonusTable      = []int{0, 3, 6, 12}
)

const (
	// AllClearBonus is added on top of the chain score when an erasure empties the field.
	AllClearBonus = 2100

	maxTotalBonus = 999
)

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ChainBonus returns the bonus for the 1-based chain number. Chains past 13 reuse the last entry.
func ChainBonus(chain int) int {
	return chainBonusTable[clampIndex(chain-1, len(chainBonusTable))]
}

// ConnectionBonus returns the bonus for a single group of the given size.
func ConnectionBonus(size int) int {
	return connectionBonusTable[clampIndex(size-ConnectCount, len(connectionBonusTable))]
}

// ColorBonus returns the bonus for the number of distinct colors erased together.
func ColorBonus(colors int) int {
	return colorBonusTable[clampIndex(colors-1, len(colorBonusTable))]
}

// CalculateScore returns the points for one erasure pass.
func CalculateScore(erased, chain int, groups []Group, colors int) int {
	bonus := ChainBonus(chain) + ColorBonus(colors)
	for _, g := range groups {
		bonus += ConnectionBonus(len(g))
	}
	if bonus == 0 {
		bonus = 1
	}
	if bonus > maxTotalBonus {
		bonus = maxTotalBonus
	}
	return erased * 10 * bonus
}
