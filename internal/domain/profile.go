package domain

// Gender of the user. Other shares the female BMR coefficient.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// UnitSystem selects how Height and Weight on a profile are expressed.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"
)

// ActivityLevel is one of a fixed, ordered set of daily activity buckets.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "veryActive"
)

// ActivityLevels lists the valid activity levels from least to most active.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

// UserProfile holds the demographic and biometric attributes of a user.
// Every field is optional; the zero value means "not provided".
//
// Height is centimetres for metric profiles and total inches for imperial
// ones. Weight is kilograms for metric profiles and pounds for imperial ones.
type UserProfile struct {
	UserID        string        `json:"userId,omitempty"`
	Age           int           `json:"age,omitempty"`
	Gender        Gender        `json:"gender,omitempty"`
	UnitSystem    UnitSystem    `json:"unit,omitempty"`
	Height        float64       `json:"height,omitempty"`
	Weight        float64       `json:"weight,omitempty"`
	ActivityLevel ActivityLevel `json:"activityLevel,omitempty"`
	Timezone      string        `json:"timezone,omitempty"`
}

// IsImperial reports whether height and weight are in inches and pounds.
// Profiles without a unit system are metric.
func (p *UserProfile) IsImperial() bool {
	return p.UnitSystem == UnitImperial
}

// ComposeInches turns a feet + inches reading into total inches.
func ComposeInches(feet, inches float64) float64 {
	return feet*12 + inches
}

// ProfilePatch is a partial profile update. Only non-nil fields are applied.
type ProfilePatch struct {
	Age           *int           `json:"age"`
	Gender        *Gender        `json:"gender"`
	UnitSystem    *UnitSystem    `json:"unit"`
	Height        *float64       `json:"height"`
	HeightFeet    *float64       `json:"heightFeet"`
	HeightInches  *float64       `json:"heightInches"`
	Weight        *float64       `json:"weight"`
	ActivityLevel *ActivityLevel `json:"activityLevel"`
	Timezone      *string        `json:"timezone"`
}

// Apply merges the patch into p.
// HeightFeet/HeightInches, when present, override Height with the composed
// number of inches.
func (patch ProfilePatch) Apply(p *UserProfile) {
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.Gender != nil {
		p.Gender = *patch.Gender
	}
	if patch.UnitSystem != nil {
		p.UnitSystem = *patch.UnitSystem
	}
	if patch.Height != nil {
		p.Height = *patch.Height
	}
	if patch.HeightFeet != nil || patch.HeightInches != nil {
		var feet, inches float64
		if patch.HeightFeet != nil {
			feet = *patch.HeightFeet
		}
		if patch.HeightInches != nil {
			inches = *patch.HeightInches
		}
		p.Height = ComposeInches(feet, inches)
	}
	if patch.Weight != nil {
		p.Weight = *patch.Weight
	}
	if patch.ActivityLevel != nil {
		p.ActivityLevel = *patch.ActivityLevel
	}
	if patch.Timezone != nil {
		p.Timezone = *patch.Timezone
	}
}

// Validate rejects values outside the enumerations and negative numbers.
func (patch ProfilePatch) Validate() error {
	if patch.Age != nil && *patch.Age < 1 {
		return invalidf("age must be at least 1")
	}
	if patch.Gender != nil {
		switch *patch.Gender {
		case GenderMale, GenderFemale, GenderOther:
		default:
			return invalidf("unknown gender %q", *patch.Gender)
		}
	}
	if patch.UnitSystem != nil {
		switch *patch.UnitSystem {
		case UnitMetric, UnitImperial:
		default:
			return invalidf("unknown unit system %q", *patch.UnitSystem)
		}
	}
	for name, v := range map[string]*float64{
		"height":       patch.Height,
		"heightFeet":   patch.HeightFeet,
		"heightInches": patch.HeightInches,
		"weight":       patch.Weight,
	} {
		if v != nil && *v < 0 {
			return invalidf("%s must not be negative", name)
		}
	}
	if patch.ActivityLevel != nil && !validActivityLevel(*patch.ActivityLevel) {
		return invalidf("unknown activity level %q", *patch.ActivityLevel)
	}
	if patch.Timezone != nil && *patch.Timezone != "" {
		if _, err := LoadLocation(*patch.Timezone); err != nil {
			return err
		}
	}
	return nil
}

func validActivityLevel(level ActivityLevel) bool {
	for _, l := range ActivityLevels {
		if l == level {
			return true
		}
	}
	return false
}
