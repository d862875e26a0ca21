package rawg

// Platform ids
const (
	PlatformPC         = 4
	PlatformPS5        = 187
	PlatformPS4        = 18
	PlatformXboxSeries = 186
	PlatformXboxOne    = 1
	PlatformSwitch     = 7
	PlatformIOS        = 3
	PlatformAndroid    = 21
)

// Genre ids
const (
	GenreAction      = 4
	GenreIndie       = 51
	GenreAdventure   = 3
	GenreRPG         = 5
	GenreStrategy    = 10
	GenreShooter     = 2
	GenreCasual      = 40
	GenreSimulation  = 14
	GenrePuzzle      = 7
	GenreArcade      = 11
	GenrePlatformer  = 83
	GenreRacing      = 1
	GenreSports      = 15
	GenreFighting    = 6
	GenreFamily      = 19
	GenreBoardGames  = 28
	GenreEducational = 34
	GenreCard        = 17
)

// Orderings used by the fixed list endpoints
const (
	OrderingAdded      = "-added"
	OrderingRating     = "-rating"
	OrderingMetacritic = "-metacritic"
)

// PageSize is the fixed page size for every list request
const PageSize = 20

// Platforms maps display names to platform ids, in menu order
var Platforms = []struct {
	Name string
	ID   int
}{
	{"PC", PlatformPC},
	{"PlayStation 5", PlatformPS5},
	{"PlayStation 4", PlatformPS4},
	{"Xbox Series S/X", PlatformXboxSeries},
	{"Xbox One", PlatformXboxOne},
	{"Nintendo Switch", PlatformSwitch},
	{"iOS", PlatformIOS},
	{"Android", PlatformAndroid},
}
