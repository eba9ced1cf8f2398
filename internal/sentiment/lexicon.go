package sentiment

// marketTerms rates headline vocabulary on the VADER [-4, 4] intensity scale.
func marketTerms() map[string]float64 {
	return map[string]float64{
		"beat": 1.5, "beats": 1.6, "bullish": 2.3, "rally": 1.8, "rallies": 1.7,
		"surge": 1.9, "surges": 1.9, "surged": 1.8, "soar": 2.2, "soars": 2.2,
		"soared": 2.1, "jump": 1.3, "jumps": 1.3, "gained": 1.6, "rise": 1.2,
		"rises": 1.2, "rose": 1.1, "climb": 1.2, "climbs": 1.2, "rebound": 1.5,
		"rebounds": 1.5, "recovery": 1.6, "upgrade": 2.0, "upgrades": 2.0,
		"upgraded": 2.1, "outperform": 2.0, "outperformed": 2.0, "overweight": 1.2,
		"profitable": 2.0, "profitability": 1.6, "grew": 1.4, "growing": 1.4,
		"record": 1.0, "buyback": 1.0, "expansion": 1.2, "tailwind": 1.4,
		"tailwinds": 1.4, "breakthrough": 2.3, "approval": 1.8, "approved": 1.7,
		"partnership": 1.2, "undervalued": 1.3,
		"bearish": -2.3, "plunge": -2.4, "plunges": -2.4, "plunged": -2.4,
		"plummet": -2.6, "plummets": -2.6, "slump": -2.0, "slumps": -2.0,
		"tumble": -2.0, "tumbles": -2.0, "sink": -1.6, "sinks": -1.6, "sank": -1.6,
		"fall": -1.3, "falls": -1.3, "fell": -1.2, "falling": -1.4, "drops": -1.3,
		"dropped": -1.3, "slide": -1.2, "slides": -1.2, "selloff": -2.0,
		"sell-off": -2.0, "missed": -1.5, "downgrade": -2.0, "downgrades": -2.0,
		"downgraded": -2.1, "underperform": -2.0, "underweight": -1.2,
		"deficit": -1.4, "downturn": -1.9, "slowdown": -1.6, "headwind": -1.3,
		"headwinds": -1.3, "impairment": -1.6, "writedown": -1.8,
		"write-down": -1.8, "layoffs": -1.8, "layoff": -1.8, "probe": -1.4,
		"investigation": -1.3, "scandal": -2.7, "bankruptcy": -3.0,
		"default": -2.2, "recall": -1.6, "halt": -1.3, "overvalued": -1.3,
		"bubble": -1.5, "dilution": -1.2, "penalty": -1.8, "fined": -1.6,
	}
}
