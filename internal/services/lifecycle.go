package services

import "github.com/chachabrian/ridehail-backend/internal/models"

// rideTransitions is the complete status graph. Completed and cancelled
// have no outgoing edges.
var rideTransitions = map[models.RideStatus][]models.RideStatus{
	models.RideStatusPending:  {models.RideStatusAssigned, models.RideStatusCancelled},
	models.RideStatusAssigned: {models.RideStatusAssigned, models.RideStatusAccepted, models.RideStatusCancelled},
	models.RideStatusAccepted: {models.RideStatusOngoing, models.RideStatusCancelled},
	models.RideStatusOngoing:  {models.RideStatusCompleted, models.RideStatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the status graph.
// assigned -> assigned is a reassignment.
func CanTransition(from, to models.RideStatus) bool {
	for _, next := range rideTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// canSetStatus limits the generic status write to graph edges that do not
// need extra data. Entering assigned requires a driver and goes through
// Assign.
func canSetStatus(from, to models.RideStatus) bool {
	return to != models.RideStatusAssigned && CanTransition(from, to)
}
