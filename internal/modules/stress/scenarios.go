package stress

import (
	"fmt"

	"github.com/aristath/riskdesk/internal/domain"
)

// builtinScenarios are the named scenarios served by the API. Shocks are
// simple returns applied to the factor proxies.
var builtinScenarios = []domain.StressScenario{
	{
		Name:        "market_down_10",
		Description: "Broad equity selloff of 10%",
		Shocks:      map[string]float64{"Market": -0.10, "SmallCap": -0.12, "EmergingMarkets": -0.13},
	},
	{
		Name:        "market_down_20",
		Description: "Severe equity drawdown of 20%",
		Shocks:      map[string]float64{"Market": -0.20, "SmallCap": -0.25, "EmergingMarkets": -0.26, "Credit": -0.08},
	},
	{
		Name:        "rates_up_100bp",
		Description: "Parallel 100bp rise in long rates",
		Shocks:      map[string]float64{"LongRates": -0.08, "Credit": -0.03},
	},
	{
		Name:        "credit_crunch",
		Description: "High-yield spread blowout",
		Shocks:      map[string]float64{"Credit": -0.15, "Market": -0.08, "SmallCap": -0.10},
	},
	{
		Name:        "oil_spike",
		Description: "Crude oil up 25%",
		Shocks:      map[string]float64{"Oil": 0.25, "Market": -0.03},
	},
	{
		Name:        "dollar_rally",
		Description: "Dollar up 8%, EM and gold under pressure",
		Shocks:      map[string]float64{"Dollar": 0.08, "EmergingMarkets": -0.09, "Gold": -0.05},
	},
	{
		Name:        "flight_to_quality",
		Description: "Risk-off: equities down, treasuries and gold bid",
		Shocks:      map[string]float64{"Market": -0.12, "SmallCap": -0.15, "LongRates": 0.06, "Gold": 0.08, "Credit": -0.06},
	},
}

// Scenarios returns a copy of the built-in scenario list.
func Scenarios() []domain.StressScenario {
	out := make([]domain.StressScenario, len(builtinScenarios))
	copy(out, builtinScenarios)
	return out
}

// ScenarioByName looks up a built-in scenario.
func ScenarioByName(name string) (domain.StressScenario, error) {
	for _, s := range builtinScenarios {
		if s.Name == name {
			return s, nil
		}
	}
	return domain.StressScenario{}, fmt.Errorf("%w: unknown scenario %q", domain.ErrConfiguration, name)
}
