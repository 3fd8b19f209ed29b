package slug

// Словари для запоминаемых слагов: по 24 слова, нижний регистр, без пунктуации.
var (
	adjectives = []string{
		"brave", "calm", "eager", "fancy", "gentle", "happy",
		"jolly", "kind", "lively", "merry", "nice", "proud",
		"quick", "silly", "witty", "zany", "bright", "clever",
		"bold", "swift", "quiet", "sunny", "tidy", "wise",
	}

	nouns = []string{
		"apple", "badger", "canyon", "dragon", "falcon", "forest",
		"garden", "harbor", "island", "jungle", "lantern", "meadow",
		"otter", "panda", "river", "rocket", "sparrow", "tiger",
		"valley", "walrus", "comet", "pebble", "maple", "beacon",
	}

	verbs = []string{
		"jumps", "runs", "flies", "swims", "dances", "sings",
		"climbs", "dreams", "glows", "hikes", "laughs", "paints",
		"reads", "roams", "sails", "skips", "spins", "thinks",
		"waves", "writes", "builds", "drifts", "hops", "wanders",
	}
)
