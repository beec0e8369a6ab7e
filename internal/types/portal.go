package types

// ChunkOffset is a relative jump measured in chunks.
type ChunkOffset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Portal either teleports the player by Destination or, when IsExit is
// set, is the world's unique exit door and has no destination.
type Portal struct {
	ID          string      `json:"id"`
	Bounds      Rect        `json:"bounds"`
	Destination ChunkOffset `json:"destination"`
	IsExit      bool        `json:"isExit"`
	Active      bool        `json:"active"`
}
