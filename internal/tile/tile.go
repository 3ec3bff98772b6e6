package tile

// Tile is the payload of an occupied cell. Tiles are values: an upgrade
// produces a new Tile that replaces the old one in the grid.
type Tile struct {
	Kind Kind `json:"kind"`
}

func New(k Kind) Tile { return Tile{Kind: k} }

func (t Tile) Level() int { return t.Kind.Level }

func (t Tile) Element() Element { return t.Kind.Element }

// Upgraded returns a copy with the level raised by n.
func (t Tile) Upgraded(n int) Tile {
	k := t.Kind
	k.Level += n
	return Tile{Kind: k}
}

func (t Tile) String() string { return t.Kind.String() }
