package emotion

// DefaultVocabulary returns the curated synonym phrases for each level. The
// prototype for a level is the mean embedding of its phrases, so the phrases
// should stay short and unambiguous. Edit with care: changing a level's
// vocabulary requires rebuilding its prototype.
func DefaultVocabulary() map[Level][]string {
	return map[Level][]string{
		VeryUpset: {
			"very upset", "devastated", "furious", "enraged", "heartbroken",
			"outraged", "livid", "crushed", "miserable", "seething with anger",
			"absolutely distraught", "in total despair",
		},
		Upset: {
			"upset", "angry", "distressed", "hurt", "resentful",
			"troubled", "aggravated", "upset and angry", "deeply bothered",
			"feeling wronged", "indignant",
		},
		Frustrated: {
			"frustrated", "irritated", "annoyed", "exasperated", "fed up",
			"impatient", "agitated", "ticked off", "losing my patience",
			"so frustrating", "this is maddening",
		},
		Uncomfortable: {
			"uncomfortable", "uneasy", "awkward", "bothered", "unsettled",
			"tense", "on edge", "a bit anxious", "slightly worried",
			"not at ease", "mildly concerned",
		},
		Neutral: {
			"neutral", "indifferent", "okay", "fine", "neither good nor bad",
			"no strong feelings", "unbothered", "meh", "just average",
			"nothing special", "business as usual",
		},
		Comfortable: {
			"comfortable", "at ease", "relaxed", "calm", "settled",
			"reassured", "pleasant", "feeling okay about this",
			"quietly pleased", "at peace", "soothed",
		},
		Content: {
			"content", "satisfied", "peaceful", "serene", "fulfilled",
			"gratified", "thankful", "quietly happy", "all is well",
			"feeling settled and satisfied", "grateful",
		},
		Happy: {
			"happy", "glad", "cheerful", "pleased", "delighted",
			"upbeat", "smiling", "in a good mood", "feeling great",
			"having a good day", "joyful",
		},
		VeryHappy: {
			"very happy", "thrilled", "overjoyed", "elated", "excited",
			"beaming", "so happy right now", "bursting with joy",
			"couldn't be happier", "jubilant", "wonderful news",
		},
		Ecstatic: {
			"ecstatic", "euphoric", "exhilarated", "on top of the world",
			"over the moon", "blissful", "rapturous", "beyond excited",
			"best day of my life", "absolutely ecstatic", "pure elation",
		},
	}
}
