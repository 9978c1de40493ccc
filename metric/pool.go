package metric

// Pool holds the depletable resources. It is not clamped; affordability is
// checked before an action is applied.
type Pool struct {
	Budget float64 `json:"budget"`
	HR     float64 `json:"hr"`
}

func (p Pool) Affords(cost, hrCost float64) bool {
	return p.Budget >= cost && p.HR >= hrCost
}

// Spend subtracts without a floor.
func (p Pool) Spend(cost, hrCost float64) Pool {
	return Pool{Budget: p.Budget - cost, HR: p.HR - hrCost}
}
