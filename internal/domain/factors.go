package domain

// Factor is a named systematic risk driver proxied by a tradable ETF whose
// price history stands in for the factor's return series. The factor table
// is immutable reference data.
type Factor struct {
	Name        string `json:"name"`
	ProxySymbol string `json:"proxy_symbol"`
	Description string `json:"description"`
}

var factorTable = []Factor{
	{Name: "Market", ProxySymbol: "SPY", Description: "US broad equity market"},
	{Name: "SmallCap", ProxySymbol: "IWM", Description: "US small-cap equities"},
	{Name: "LongRates", ProxySymbol: "TLT", Description: "Long-dated US treasuries"},
	{Name: "Credit", ProxySymbol: "HYG", Description: "US high-yield credit"},
	{Name: "Dollar", ProxySymbol: "UUP", Description: "US dollar index"},
	{Name: "Oil", ProxySymbol: "USO", Description: "Crude oil"},
	{Name: "Gold", ProxySymbol: "GLD", Description: "Gold bullion"},
	{Name: "EmergingMarkets", ProxySymbol: "EEM", Description: "Emerging-market equities"},
}

// Factors returns a copy of the factor reference table.
func Factors() []Factor {
	out := make([]Factor, len(factorTable))
	copy(out, factorTable)
	return out
}

// FactorByName looks up a factor by its name.
func FactorByName(name string) (Factor, bool) {
	for _, f := range factorTable {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}

// FactorNames returns the factor names in table order.
func FactorNames() []string {
	names := make([]string, len(factorTable))
	for i, f := range factorTable {
		names[i] = f.Name
	}
	return names
}
