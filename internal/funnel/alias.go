package funnel

import "hash/fnv"

var aliasAdjectives = []string{
	"Curious", "Happy", "Clever", "Wise", "Playful", "Brave", "Swift", "Gentle", "Smart", "Busy",
	"Bold", "Calm", "Eager", "Keen", "Lively", "Merry", "Nimble", "Quick", "Quiet", "Sunny",
	"Bright", "Cheerful", "Daring", "Earnest", "Fearless", "Gracious", "Humble", "Jolly", "Kind", "Loyal",
	"Patient", "Radiant", "Sincere", "Steady", "Tender", "Upbeat", "Vivid", "Warm", "Witty", "Zesty",
}

var aliasAnimals = []string{
	"Panda", "Fox", "Owl", "Otter", "Lion", "Eagle", "Deer", "Raven", "Beaver", "Koala",
	"Sloth", "Hamster", "Cat", "Bear", "Penguin", "Kangaroo", "Parrot", "Giraffe", "Duck", "Raccoon",
	"Dolphin", "Whale", "Seahorse", "Turtle", "Octopus", "Crane", "Heron", "Finch", "Sparrow", "Dove",
	"Falcon", "Hawk", "Lynx", "Marten", "Badger", "Wombat", "Gecko", "Ibis", "Jay", "Kestrel",
}

// VisitorAlias returns a stable anonymized display name for a visitor session id,
// used by the admin panel instead of showing raw session identifiers.
func VisitorAlias(sessionID string) string {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	index := int(h.Sum32())

	adjIndex := index % len(aliasAdjectives)
	animalIndex := (index / len(aliasAdjectives)) % len(aliasAnimals)

	return aliasAdjectives[adjIndex] + " " + aliasAnimals[animalIndex]
}
