package distribution

// Phase is the coarse lifecycle stage of the distribution. It only ever
// moves forward.
type Phase uint8

const (
	PhaseNotStarted   Phase = 0
	PhaseDistribution Phase = 1
	PhaseAMM          Phase = 2
	PhaseMarket       Phase = 3
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseDistribution:
		return "Distribution"
	case PhaseAMM:
		return "AMM"
	case PhaseMarket:
		return "Market"
	}
	return "Unknown"
}
