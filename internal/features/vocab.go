package features

import "github.com/pitwall/paddock/internal/domain"

// vocabEntry maps a canonical entity id to the aliases recognized in text.
type vocabEntry struct {
	ID      string
	Aliases []string
}

// Entity vocabularies are static and read-only after startup. Slices keep
// declaration order so extraction output is deterministic.
var entityVocab = map[domain.EntityKind][]vocabEntry{
	domain.EntityKindDriver: {
		{ID: "hamilton", Aliases: []string{"hamilton", "lewis hamilton"}},
		{ID: "verstappen", Aliases: []string{"verstappen", "max verstappen"}},
		{ID: "leclerc", Aliases: []string{"leclerc", "charles leclerc"}},
		{ID: "norris", Aliases: []string{"norris", "lando norris"}},
		{ID: "russell", Aliases: []string{"russell", "george russell"}},
		{ID: "alonso", Aliases: []string{"alonso", "fernando alonso"}},
		{ID: "sainz", Aliases: []string{"sainz", "carlos sainz"}},
		{ID: "piastri", Aliases: []string{"piastri", "oscar piastri"}},
		{ID: "perez", Aliases: []string{"perez", "sergio perez", "checo"}},
		{ID: "vettel", Aliases: []string{"vettel", "sebastian vettel"}},
		{ID: "raikkonen", Aliases: []string{"raikkonen", "kimi raikkonen"}},
		{ID: "schumacher", Aliases: []string{"schumacher", "michael schumacher"}},
		{ID: "senna", Aliases: []string{"senna", "ayrton senna"}},
		{ID: "prost", Aliases: []string{"prost", "alain prost"}},
	},
	domain.EntityKindTeam: {
		{ID: "ferrari", Aliases: []string{"ferrari", "scuderia"}},
		{ID: "mercedes", Aliases: []string{"mercedes", "silver arrows"}},
		{ID: "red_bull", Aliases: []string{"red bull", "redbull"}},
		{ID: "mclaren", Aliases: []string{"mclaren"}},
		{ID: "aston_martin", Aliases: []string{"aston martin"}},
		{ID: "williams", Aliases: []string{"williams"}},
		{ID: "alpine", Aliases: []string{"alpine", "renault"}},
		{ID: "haas", Aliases: []string{"haas"}},
		{ID: "sauber", Aliases: []string{"sauber", "kick sauber"}},
	},
	domain.EntityKindCircuit: {
		{ID: "monza", Aliases: []string{"monza", "italian grand prix"}},
		{ID: "silverstone", Aliases: []string{"silverstone", "british grand prix"}},
		{ID: "monaco", Aliases: []string{"monaco", "monte carlo"}},
		{ID: "spa", Aliases: []string{"spa", "belgian grand prix"}},
		{ID: "suzuka", Aliases: []string{"suzuka", "japanese grand prix"}},
		{ID: "interlagos", Aliases: []string{"interlagos", "brazilian grand prix"}},
		{ID: "singapore", Aliases: []string{"singapore", "marina bay"}},
		{ID: "austin", Aliases: []string{"austin", "cota", "united states grand prix"}},
	},
}

// Query-type tag vocabularies, checked in declaration order.
var tagVocab = []struct {
	Tag      domain.QueryTag
	Keywords []string
}{
	{domain.QueryTagComparison, []string{"compare", "comparison", "versus", " vs ", " vs.", "better than", "against", "head-to-head", "head to head"}},
	{domain.QueryTagPrediction, []string{"predict", "prediction", "forecast", "who will win", "will win", "expect", "chances", "likely"}},
	{domain.QueryTagHistorical, []string{"history", "historical", "all-time", "all time", "career", "ever", "record", "past seasons"}},
	{domain.QueryTagStatistical, []string{"stats", "statistics", "average", "total", "how many", "points", "wins", "poles", "fastest lap", "podiums"}},
}

// Complexity indicator keywords. Their presence raises the complexity score.
var complexityIndicators = []string{
	"compare", "analyze", "analysis", "explain why", "across", "trend",
	"correlation", "breakdown", "versus", "difference between",
}

// Relative-time phrases recognized when interpreting temporal references
// and clarification answers.
var (
	currentSeasonPhrases = []string{"this season", "this year", "current season", "currently", "right now"}
	historicalPhrases    = []string{"last season", "last year", "previous season", "career", "all-time", "all time", "history", "back then"}
	futurePhrases        = []string{"next race", "next season", "next year", "upcoming", "will win", "who will"}
)
