package model

// UnknownTrade is assigned to items with no (Room, Component) mapping.
const UnknownTrade = "Unknown Trade"

// TradeMapping assigns a responsible trade to a (Room, Component) pair.
type TradeMapping struct {
	Room      string `json:"room"`
	Component string `json:"component"`
	Trade     string `json:"trade"`
}
