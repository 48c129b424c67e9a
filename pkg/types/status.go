package types

// AggregateStatus derives an item's displayed status from its units. The
// ordering reflects usability priority: callers care first whether
// something is borrowable.
//
//   - any unit available  -> available
//   - else any loaned     -> loaned
//   - else any in repair  -> under-repair
//   - else                -> lost only when every unit is lost,
//     otherwise reserved
//
// Pure derivation over the passed slice; callers must recompute on every
// read against fresh registry state and must never persist the result.
func AggregateStatus(units []Unit) string {
	var loaned, repairing, reserved bool
	for i := range units {
		switch units[i].Status {
		case UnitStatusAvailable:
			return UnitStatusAvailable
		case UnitStatusLoaned:
			loaned = true
		case UnitStatusUnderRepair:
			repairing = true
		case UnitStatusReserved:
			reserved = true
		}
	}
	if loaned {
		return UnitStatusLoaned
	}
	if repairing {
		return UnitStatusUnderRepair
	}
	if reserved {
		return UnitStatusReserved
	}
	// Every unit is lost. An empty unit set also lands here, but declared
	// counts are validated to at least 1 so it is not observable through
	// the catalog.
	return UnitStatusLost
}
