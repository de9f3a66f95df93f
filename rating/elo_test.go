package rating

import "testing"

func TestAdjustEqualRatingsDecisiveResult(t *testing.T) {
	// Equal priors give an expected score of 0.5 each, so the winner
	// gains exactly K*0.5 = 16 and the loser drops by the same.
	newA, newB := Adjust(1200, 1200, 3, 1)
	if newA != 1216 {
		t.Errorf("winner rating = %d, want 1216", newA)
	}
	if newB != 1184 {
		t.Errorf("loser rating = %d, want 1184", newB)
	}
}

func TestAdjustZeroSum(t *testing.T) {
	ratings := []int{800, 1000, 1200, 1201, 1350, 1777, 2100}
	scores := [][2]int{{0, 0}, {1, 0}, {0, 3}, {5, 5}, {10, 2}}

	for _, ra := range ratings {
		for _, rb := range ratings {
			for _, s := range scores {
				newA, newB := Adjust(ra, rb, s[0], s[1])
				sum := (newA - ra) + (newB - rb)
				if sum < -1 || sum > 1 {
					t.Errorf("Adjust(%d, %d, %d, %d): exchange sum %d exceeds rounding tolerance",
						ra, rb, s[0], s[1], sum)
				}
			}
		}
	}
}

func TestAdjustUpsetAmplification(t *testing.T) {
	underdogGain, _ := Change(1100, 1300, 2, 0)
	favoriteGain, _ := Change(1300, 1100, 2, 0)

	if underdogGain <= favoriteGain {
		t.Errorf("underdog gained %d, favorite gained %d; upset should pay more", underdogGain, favoriteGain)
	}
	if underdogGain <= 0 {
		t.Errorf("underdog gain = %d, want positive", underdogGain)
	}
}

func TestAdjustDrawBetweenEquals(t *testing.T) {
	deltaA, deltaB := Change(1200, 1200, 2, 2)
	if deltaA != 0 || deltaB != 0 {
		t.Errorf("draw between equal ratings moved ratings by (%d, %d), want (0, 0)", deltaA, deltaB)
	}
}

func TestAdjustDrawFavorsUnderdog(t *testing.T) {
	deltaLow, deltaHigh := Change(1000, 1400, 1, 1)
	if deltaLow <= 0 {
		t.Errorf("lower-rated player's draw delta = %d, want positive", deltaLow)
	}
	if deltaHigh >= 0 {
		t.Errorf("higher-rated player's draw delta = %d, want negative", deltaHigh)
	}
}

func TestAdjustOnlyOutcomeMatters(t *testing.T) {
	// The margin of victory does not influence the exchange.
	a1, b1 := Adjust(1250, 1180, 1, 0)
	a2, b2 := Adjust(1250, 1180, 9, 0)
	if a1 != a2 || b1 != b2 {
		t.Errorf("scoreline margin changed the exchange: (%d,%d) vs (%d,%d)", a1, b1, a2, b2)
	}
}
