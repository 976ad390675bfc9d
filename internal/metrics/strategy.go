package metrics

import "fmt"

// Strategy determines how recorded values for a key are accumulated and
// aggregated. The set is closed; strategy names match the ones used in
// existing run configs.
type Strategy uint8

const (
	// StrategyList retains every recorded value in call order.
	StrategyList Strategy = iota
	// StrategyBatchWeightedAvg keeps a sample-count-weighted running
	// average: sum(value_i * n_i) / sum(n_i).
	StrategyBatchWeightedAvg
	// StrategySum keeps a running sum of recorded values.
	StrategySum
	// StrategyLast keeps only the most recently recorded value.
	StrategyLast
)

const (
	strategyListName          = "list"
	strategyBatchWeightedName = "batch_weighted_avg_list"
	strategySumName           = "sum"
	strategyLastName          = "last"
)

func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case strategyListName:
		return StrategyList, nil
	case strategyBatchWeightedName:
		return StrategyBatchWeightedAvg, nil
	case strategySumName:
		return StrategySum, nil
	case strategyLastName:
		return StrategyLast, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyList:
		return strategyListName
	case StrategyBatchWeightedAvg:
		return strategyBatchWeightedName
	case StrategySum:
		return strategySumName
	case StrategyLast:
		return strategyLastName
	default:
		return "unknown"
	}
}

// StrategyNames returns the recognized strategy names.
func StrategyNames() []string {
	return []string{
		strategyListName,
		strategyBatchWeightedName,
		strategySumName,
		strategyLastName,
	}
}
