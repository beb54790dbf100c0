package lift

// Validate checks that the configuration is structurally usable by any
// calculator. Scheme specific restrictions are checked by the calculators.
func (c Configuration) Validate() error {
	known := false
	for _, scheme := range Schemes {
		if c.Scheme == scheme {
			known = true
			break
		}
	}
	if !known {
		return NewConfigurationError(c.Name, LiftWide, "unsupported progression scheme %q", c.Scheme)
	}
	if c.SetCount <= 0 {
		return NewConfigurationError(c.Name, LiftWide, "set count must be positive, got %d", c.SetCount)
	}
	if err := validateRepRange(c.Name, LiftWide, c.RepRange); err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(c.Sets))
	for _, override := range c.Sets {
		if override.Position < 0 || override.Position >= c.SetCount {
			return NewConfigurationError(c.Name, override.Position,
				"override position outside configured set count %d", c.SetCount)
		}
		if _, dup := seen[override.Position]; dup {
			return NewConfigurationError(c.Name, override.Position, "more than one override for position")
		}
		seen[override.Position] = struct{}{}

		if err := validateOverride(c.Name, override); err != nil {
			return err
		}
	}
	return nil
}

func validateOverride(name string, s SetOverride) error {
	if err := validateRepRange(name, s.Position, s.RepRange); err != nil {
		return err
	}

	switch s.Kind {
	case "", SetKindStandard:
		return nil
	case SetKindDrop:
		if s.Position == 0 {
			return NewConfigurationError(name, s.Position, "drop set has no preceding set")
		}
		if s.DropPercentage <= 0 || s.DropPercentage >= 1 {
			return NewConfigurationError(name, s.Position,
				"drop percentage must be between 0 and 1 exclusive, got %v", s.DropPercentage)
		}
		return nil
	case SetKindMyoRep:
		if s.SetGoal <= 0 {
			return NewConfigurationError(name, s.Position, "myo-rep set goal must be positive, got %d", s.SetGoal)
		}
		if s.SetMatching {
			if s.MatchSetGoal == nil {
				return NewConfigurationError(name, s.Position, "set matching enabled without a match set goal")
			}
			if *s.MatchSetGoal <= 0 {
				return NewConfigurationError(name, s.Position,
					"match set goal must be positive, got %d", *s.MatchSetGoal)
			}
			return nil
		}
		if s.RepFloor == nil {
			return NewConfigurationError(name, s.Position, "rep floor mode requires a rep floor")
		}
		if *s.RepFloor < 0 {
			return NewConfigurationError(name, s.Position, "rep floor must not be negative, got %d", *s.RepFloor)
		}
		return nil
	}
	return NewConfigurationError(name, s.Position, "unknown set kind %q", s.Kind)
}

func validateRepRange(name string, position int, r RepRange) error {
	if r.Top <= 0 {
		return NewConfigurationError(name, position, "rep range top must be positive, got %d", r.Top)
	}
	if r.Bottom < 0 || r.Bottom > r.Top {
		return NewConfigurationError(name, position, "invalid rep range %d-%d", r.Bottom, r.Top)
	}
	return nil
}
