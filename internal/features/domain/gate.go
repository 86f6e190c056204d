package domain

// FreeHistoryLimit is the number of history items kept without premium.
const FreeHistoryLimit = 5

// Unlimited marks an unbounded limit.
const Unlimited = -1

// Availability is a catalog entry flagged for the current trust level.
type Availability struct {
	Entry
	Available bool `json:"available"`
}

// isFree reports whether id is a known entry that needs no premium.
// Unknown ids are never free.
func isFree(entries []Entry, id string) bool {
	e, ok := find(entries, id)
	return ok && !e.IsPremium
}

// IsProviderAvailable is true iff premium or the provider is free.
func IsProviderAvailable(id string, premium bool) bool {
	return premium || isFree(providers, id)
}

// IsToneAvailable is true iff premium or the tone is free.
func IsToneAvailable(id string, premium bool) bool {
	return premium || isFree(tones, id)
}

// AvailableProviders flags every provider. Entries are never removed.
func AvailableProviders(premium bool) []Availability {
	return flag(providers, premium)
}

// AvailableTones flags every tone. Entries are never removed.
func AvailableTones(premium bool) []Availability {
	return flag(tones, premium)
}

// HistoryLimit returns FreeHistoryLimit without premium, Unlimited otherwise.
func HistoryLimit(premium bool) int {
	if premium {
		return Unlimited
	}
	return FreeHistoryLimit
}

func flag(entries []Entry, premium bool) []Availability {
	out := make([]Availability, len(entries))
	for i, e := range entries {
		out[i] = Availability{Entry: e, Available: premium || !e.IsPremium}
	}
	return out
}
