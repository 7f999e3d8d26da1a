package simulator

import "github.com/roomkeeper/roomkeeper/api/pkg/types"

// validateConstraints checks the scenario's optional overrides against their
// own bounds, independent of the loaded dataset.
func validateConstraints(c types.ScenarioConstraints) error {
	if c.IdleThreshold != nil {
		if *c.IdleThreshold < 0 || *c.IdleThreshold > 1 {
			return &ValidationError{Reason: "idle_threshold must be in [0,1]"}
		}
	}
	if c.StakeholderCap != nil {
		if *c.StakeholderCap <= 0 || *c.StakeholderCap > 1 {
			return &ValidationError{Reason: "stakeholder_cap must be in (0,1]"}
		}
	}
	for _, capacity := range c.CapacityOverride {
		if capacity <= 0 {
			return &ValidationError{Reason: "capacity_override values must be positive"}
		}
	}
	for _, multiplier := range c.PriorityAdjustment {
		if multiplier <= 0 {
			return &ValidationError{Reason: "priority_adjustment values must be positive"}
		}
	}
	return nil
}

// validateAgainstDataset checks that every capacity_override key names a
// room that exists, and every priority_adjustment key names a stakeholder
// present among the dataset's pending requests.
func (s *Simulator) validateAgainstDataset(d *scenarioDataset, c types.ScenarioConstraints) error {
	if len(c.CapacityOverride) > 0 {
		known := make(map[int64]bool, len(d.rooms))
		for _, r := range d.rooms {
			known[r.RoomID] = true
		}
		for roomID := range c.CapacityOverride {
			if !known[roomID] {
				return &ValidationError{Reason: "capacity_override refers to a room that does not exist"}
			}
		}
	}

	if len(c.PriorityAdjustment) > 0 {
		known := map[string]bool{}
		for _, reqs := range d.windows {
			for _, r := range reqs {
				known[r.StakeholderID] = true
			}
		}
		for stakeholderID := range c.PriorityAdjustment {
			if !known[stakeholderID] {
				return &ValidationError{Reason: "priority_adjustment refers to a stakeholder with no pending requests"}
			}
		}
	}

	return nil
}

// applyConstraints mutates the (already cloned) scenario dataset in place:
// overriding room capacities and scaling matching stakeholders' priority
// weights. Safe because the caller always passes a freshly cloned dataset.
func applyConstraints(d *scenarioDataset, c types.ScenarioConstraints) {
	if len(c.CapacityOverride) > 0 {
		for i, room := range d.rooms {
			if newCap, ok := c.CapacityOverride[room.RoomID]; ok {
				d.rooms[i].Capacity = newCap
			}
		}
	}

	if len(c.PriorityAdjustment) > 0 {
		for k, reqs := range d.windows {
			for i, req := range reqs {
				if multiplier, ok := c.PriorityAdjustment[req.StakeholderID]; ok {
					reqs[i].PriorityWeight = req.PriorityWeight * multiplier
				}
			}
			d.windows[k] = reqs
		}
	}
}
