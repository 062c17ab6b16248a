// engine/catalog.go
package engine

const (
	// MaxPlayers is the hard seat cap for a room.
	MaxPlayers = 8
	// RoleCount is the number of characters in the role deck.
	RoleCount = 8
	// DeckCopies is how many copies of each district template go into the deck.
	DeckCopies = 3
	// StartingGold is dealt to every player on joining.
	StartingGold = 2
	// StartingHandSize is dealt to every player on joining.
	StartingHandSize = 4
	// EndTurnIncome is the fixed gold granted when a turn ends.
	EndTurnIncome = 2
	// WinDistrictCount is the citadel size that ends the game.
	WinDistrictCount = 8
	// SelectionPoolSize is how many roles remain choosable after the
	// face-down discard (8 shuffled minus 1).
	SelectionPoolSize = RoleCount - 1
)

// Role IDs, in call order.
const (
	RoleAssassin  = 1
	RoleThief     = 2
	RoleMagician  = 3
	RoleKing      = 4
	RoleBishop    = 5
	RoleMerchant  = 6
	RoleArchitect = 7
	RoleWarlord   = 8
)

// District colors and the matching classification types.
const (
	ColorYellow = "yellow"
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorPurple = "purple"
)

const (
	TypeNoble     = "noble"
	TypeReligious = "religious"
	TypeTrade     = "trade"
	TypeMilitary  = "military"
	TypeUnique    = "unique"
)

// districtCatalog is the 18 district templates. The draw pile holds
// DeckCopies copies of each, 54 cards total.
var districtCatalog = []District{
	{ID: 1, Name: "Tavern", Cost: 1, Color: ColorGreen, Type: TypeTrade},
	{ID: 2, Name: "Market", Cost: 2, Color: ColorGreen, Type: TypeTrade},
	{ID: 3, Name: "Trading Post", Cost: 2, Color: ColorGreen, Type: TypeTrade},
	{ID: 4, Name: "Docks", Cost: 3, Color: ColorGreen, Type: TypeTrade},
	{ID: 5, Name: "Harbor", Cost: 4, Color: ColorGreen, Type: TypeTrade},
	{ID: 6, Name: "Town Hall", Cost: 5, Color: ColorGreen, Type: TypeTrade},
	{ID: 7, Name: "Temple", Cost: 1, Color: ColorBlue, Type: TypeReligious},
	{ID: 8, Name: "Church", Cost: 2, Color: ColorBlue, Type: TypeReligious},
	{ID: 9, Name: "Monastery", Cost: 3, Color: ColorBlue, Type: TypeReligious},
	{ID: 10, Name: "Cathedral", Cost: 5, Color: ColorBlue, Type: TypeReligious},
	{ID: 11, Name: "Watchtower", Cost: 1, Color: ColorRed, Type: TypeMilitary},
	{ID: 12, Name: "Prison", Cost: 2, Color: ColorRed, Type: TypeMilitary},
	{ID: 13, Name: "Battlefield", Cost: 3, Color: ColorRed, Type: TypeMilitary},
	{ID: 14, Name: "Fortress", Cost: 5, Color: ColorRed, Type: TypeMilitary},
	{ID: 15, Name: "Manor", Cost: 3, Color: ColorYellow, Type: TypeNoble},
	{ID: 16, Name: "Castle", Cost: 4, Color: ColorYellow, Type: TypeNoble},
	{ID: 17, Name: "Palace", Cost: 5, Color: ColorYellow, Type: TypeNoble},
	{ID: 18, Name: "Dragon Gate", Cost: 6, Color: ColorPurple, Type: TypeUnique},
}

// roleCatalog is the eight characters in call order.
var roleCatalog = []Role{
	{ID: RoleAssassin, Name: "Assassin", Power: "Names a character; its holder loses the whole turn", Color: "gray"},
	{ID: RoleThief, Name: "Thief", Power: "Names a character; takes all its holder's gold", Color: "gray"},
	{ID: RoleMagician, Name: "Magician", Power: "Swaps hands with a player, or redraws the hand", Color: "gray"},
	{ID: RoleKing, Name: "King", Power: "Takes the crown; earns gold for noble districts", Color: "yellow"},
	{ID: RoleBishop, Name: "Bishop", Power: "Earns gold for religious districts", Color: "blue"},
	{ID: RoleMerchant, Name: "Merchant", Power: "One extra gold; earns gold for trade districts", Color: "green"},
	{ID: RoleArchitect, Name: "Architect", Power: "Draws two extra cards", Color: "gray"},
	{ID: RoleWarlord, Name: "Warlord", Power: "Earns gold for military districts", Color: "red"},
}

// DistrictCatalog returns a copy of the district templates.
func DistrictCatalog() []District {
	return append([]District(nil), districtCatalog...)
}

// RoleCatalog returns a copy of the role templates in call order.
func RoleCatalog() []Role {
	return append([]Role(nil), roleCatalog...)
}

// RoleByID looks up a role template. Returns the zero Role and false for an
// unknown ID.
func RoleByID(id int) (Role, bool) {
	if id < 1 || id > RoleCount {
		return Role{}, false
	}
	return roleCatalog[id-1], true
}

// RoleName returns the role's name, or "" for an unknown ID.
func RoleName(id int) string {
	r, ok := RoleByID(id)
	if !ok {
		return ""
	}
	return r.Name
}

// RoleIDByName is the reverse lookup used to map a player's bound role back
// to its call-order slot. Returns 0 for an unknown name.
func RoleIDByName(name string) int {
	for _, r := range roleCatalog {
		if r.Name == name {
			return r.ID
		}
	}
	return 0
}

// Rand is the injected randomness source. *math/rand.Rand satisfies it.
// Transitions are deterministic given a fixed source.
type Rand interface {
	Intn(n int) int
}

// shuffle is an in-place Fisher-Yates, uniform over permutations.
func shuffleDistricts(cards []District, rng Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

func shuffleRoles(roles []Role, rng Rand) {
	for i := len(roles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
}

// newDeck builds and shuffles the full draw pile.
func newDeck(rng Rand) []District {
	deck := make([]District, 0, len(districtCatalog)*DeckCopies)
	for i := 0; i < DeckCopies; i++ {
		deck = append(deck, districtCatalog...)
	}
	shuffleDistricts(deck, rng)
	return deck
}

// newRolePool shuffles all eight roles and discards one face down, leaving
// seven choosable.
func newRolePool(rng Rand) []Role {
	pool := RoleCatalog()
	shuffleRoles(pool, rng)
	return pool[:SelectionPoolSize]
}

// roomCodeAlphabet omits easily-confused glyphs (0/O, 1/I/L).
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RoomCodeLength is the fixed length of generated room codes.
const RoomCodeLength = 6

// NewRoomCode generates an opaque room identity. The engine never parses it.
func NewRoomCode(rng Rand) string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
