package relay

// Event kinds used on the wire. Standard kinds keep their well-known
// numbers; the scoring kinds live in the custom range.
const (
	KindProfile     = 0     // profile metadata
	KindFollowList  = 3     // follow list (p tags)
	KindSeal        = 13    // sealed rumor, encrypted to the recipient
	KindGiftWrap    = 1059  // gift wrap around a seal, ephemeral author
	KindInboxRelays = 10050 // DM inbox relay list
	KindFavorites   = 30000 // categorized people list (favorites)

	KindRoundInitiation = 1091  // round initiation, canonical course content
	KindRoundFinal      = 1092  // per-player final record
	KindScoreSnapshot   = 30091 // addressable live score snapshot
)

// FavoritesDTag is the d-tag identifying the favorites list among kind-30000
// lists.
const FavoritesDTag = "clubhouse"

// Tag names used by the scoring kinds. Event and participant references
// use the standard e and p tags.
const (
	TagCourseHash = "course_hash"
	TagRulesHash  = "rules_hash"
	TagRoundDate  = "round_date"
)
