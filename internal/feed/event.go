package feed

// Event types published by the deck.
const (
	TypeView      = "view"
	TypeSnapshot  = "snapshot"
	TypeDecision  = "decision"
	TypeStatus    = "status"
	TypeWatchlist = "watchlist"
	TypeAutoTrade = "autotrade"
)

// Event is one state change pushed to live clients.
type Event struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol,omitempty"`
	Data   any    `json:"data"`
}
