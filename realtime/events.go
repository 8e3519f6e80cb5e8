package realtime

// Event kinds pushed to connected clients. Every client receives every
// event; the UI filters by role.
const (
	EventNewFoodPost       = "newFoodPost"
	EventFoodClaimed       = "foodClaimed"
	EventFoodCompleted     = "foodCompleted"
	EventNewWasteFoodPost  = "newWasteFoodPost"
	EventWasteFoodReserved = "wasteFoodReserved"
	EventWasteFoodSold     = "wasteFoodSold"
)

// Envelope is the wire format for a broadcast event. Data is a
// denormalized snapshot of the affected post so clients never need a
// follow-up fetch.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
