package fish

import (
	"errors"
	"fmt"
)

// ErrInvalidGearRequest is returned when the species or season is missing.
var ErrInvalidGearRequest = errors.New("fish and season are required")

const (
	budgetLow  = 10000
	budgetHigh = 30000
)

// GearRequest describes what the angler wants to catch and can spend.
type GearRequest struct {
	Fish   string `json:"fish"`
	Season string `json:"season"`
	Budget int    `json:"budget"`
}

// GearItem is one line of a tackle recommendation.
type GearItem struct {
	Type           string `json:"type"`
	Recommendation string `json:"recommendation"`
}

type kit struct {
	rod, reel, bait string
}

var kits = map[string]kit{
	"pike": {
		rod:  "Spinning rod (2.4-2.7 m, casting weight 10-40 g)",
		reel: "Spinning reel, size 3000-4000",
		bait: "Minnow wobblers, large spoons",
	},
	"carp": {
		rod:  "Carp rod (3.6-3.9 m, test curve up to 130 g)",
		reel: "Baitrunner reel, size 5000+",
		bait: "Boilies (fruit or fish), pellets, sweetcorn",
	},
	"perch": {
		rod:  "Ultralight spinning rod (1.8-2.1 m, 1-7 g)",
		reel: "Spinning reel, size 1000-2000",
		bait: "Small inline spinners, micro jigs",
	},
}

var feederKit = kit{
	rod:  "Feeder rod (3.6 m, up to 80 g)",
	reel: "Spinning reel, size 2500",
	bait: "Bloodworm, maggots, worms",
}

var winterKit = kit{
	rod:  "Ice fishing rod or tip-up",
	reel: "Ice fishing inline reel",
	bait: "Balance jigs, mormyshkas, vertical jigging spoons",
}

// RecommendGear picks rod, reel and bait for the request. Species without
// dedicated gear get feeder tackle.
func RecommendGear(req GearRequest) ([]GearItem, error) {
	key := Normalize(req.Fish)
	season := Normalize(req.Season)
	if key == "" || season == "" {
		return nil, fmt.Errorf("recommending gear: %w", ErrInvalidGearRequest)
	}

	k, ok := kits[key]
	if !ok {
		k = feederKit
	}

	switch {
	case req.Budget > 0 && req.Budget < budgetLow:
		k.rod += " (budget series, fibreglass or composite)"
	case req.Budget > budgetHigh:
		k.rod += " (premium series, high-modulus carbon)"
	}

	if season == "winter" {
		k = winterKit
	}

	return []GearItem{
		{Type: "Rod", Recommendation: k.rod},
		{Type: "Reel", Recommendation: k.reel},
		{Type: "Bait", Recommendation: k.bait},
	}, nil
}
