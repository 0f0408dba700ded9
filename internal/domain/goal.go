package domain

// GoalType selects goal-based defaults when a goal leaves its split or
// protein ratio unset.
type GoalType string

const (
	GoalWeightLoss  GoalType = "weight-loss"
	GoalWeightGain  GoalType = "weight-gain"
	GoalMuscleGain  GoalType = "muscle-gain"
	GoalMaintenance GoalType = "maintenance"
)

// CalculationStrategy is the discriminator of UserGoal.
type CalculationStrategy string

const (
	// StrategyPercentage splits the calorie target by fixed fractions.
	StrategyPercentage CalculationStrategy = "calories-percentage-based"
	// StrategyBodyweight anchors protein to bodyweight and splits the rest.
	StrategyBodyweight CalculationStrategy = "bodyweight"
)

// MacroSplit is a fractional allocation of calories among the three macros.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// RemainingSplit divides the calories left after protein between carbs and fat.
type RemainingSplit struct {
	Carbs float64 `json:"carbs"`
	Fat   float64 `json:"fat"`
}

// UserGoal is a tagged union keyed by Strategy.
//
// For StrategyPercentage only Split is meaningful. For StrategyBodyweight
// only ProteinPerBodyweight and RemainingSplit are. ProteinPerBodyweight is
// grams per kg for metric profiles and grams per lb for imperial ones.
// AdjustmentPercentage is a signed fraction (-0.20 is a 20% deficit).
type UserGoal struct {
	UserID               string              `json:"userId,omitempty"`
	Type                 GoalType            `json:"type,omitempty"`
	Strategy             CalculationStrategy `json:"calculationStrategy"`
	AdjustmentPercentage float64             `json:"adjustmentPercentage"`
	Split                *MacroSplit         `json:"split,omitempty"`
	ProteinPerBodyweight float64             `json:"proteinPerBodyweight,omitempty"`
	RemainingSplit       *RemainingSplit     `json:"remainingSplit,omitempty"`
}

// GoalPatch is a partial goal update. Only non-nil fields are applied.
type GoalPatch struct {
	Type                 *GoalType            `json:"type"`
	Strategy             *CalculationStrategy `json:"calculationStrategy"`
	AdjustmentPercentage *float64             `json:"adjustmentPercentage"`
	Split                *MacroSplit          `json:"split"`
	ProteinPerBodyweight *float64             `json:"proteinPerBodyweight"`
	RemainingSplit       *RemainingSplit      `json:"remainingSplit"`
}

// Apply merges the patch into g.
func (patch GoalPatch) Apply(g *UserGoal) {
	if patch.Type != nil {
		g.Type = *patch.Type
	}
	if patch.Strategy != nil {
		g.Strategy = *patch.Strategy
	}
	if patch.AdjustmentPercentage != nil {
		g.AdjustmentPercentage = *patch.AdjustmentPercentage
	}
	if patch.Split != nil {
		split := *patch.Split
		g.Split = &split
	}
	if patch.ProteinPerBodyweight != nil {
		g.ProteinPerBodyweight = *patch.ProteinPerBodyweight
	}
	if patch.RemainingSplit != nil {
		split := *patch.RemainingSplit
		g.RemainingSplit = &split
	}
}

// Validate checks enumerations and ranges. Any strategy string is accepted;
// unknown ones resolve to the default percentage split.
func (patch GoalPatch) Validate() error {
	if patch.Type != nil {
		switch *patch.Type {
		case GoalWeightLoss, GoalWeightGain, GoalMuscleGain, GoalMaintenance:
		default:
			return invalidf("unknown goal type %q", *patch.Type)
		}
	}
	if patch.ProteinPerBodyweight != nil && *patch.ProteinPerBodyweight < 0 {
		return invalidf("proteinPerBodyweight must not be negative")
	}
	if s := patch.Split; s != nil && (s.Protein < 0 || s.Carbs < 0 || s.Fat < 0) {
		return invalidf("split fractions must not be negative")
	}
	if s := patch.RemainingSplit; s != nil && (s.Carbs < 0 || s.Fat < 0) {
		return invalidf("remainingSplit fractions must not be negative")
	}
	return nil
}
