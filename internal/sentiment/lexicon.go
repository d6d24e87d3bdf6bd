// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package sentiment

import "github.com/GreenHacker420/propacity-proj-sub000/internal/models"

// valence maps lexicon words to weights in [-1, 1]. Positive weights stay
// at or above 0.4 so a lone positive word still clears the POSITIVE band.
var valence = map[string]float64{
	// Positive
	"amazing":     0.9,
	"awesome":     0.9,
	"beautiful":   0.7,
	"best":        0.8,
	"brilliant":   0.8,
	"clean":       0.4,
	"easy":        0.5,
	"enjoy":       0.6,
	"excellent":   0.9,
	"fantastic":   0.9,
	"fast":        0.5,
	"flawless":    0.9,
	"good":        0.6,
	"great":       0.8,
	"happy":       0.6,
	"helpful":     0.6,
	"impressed":   0.7,
	"intuitive":   0.6,
	"like":        0.4,
	"love":        0.9,
	"loved":       0.9,
	"nice":        0.5,
	"perfect":     0.9,
	"pleasant":    0.5,
	"recommend":   0.7,
	"reliable":    0.6,
	"responsive":  0.5,
	"satisfied":   0.6,
	"smooth":      0.6,
	"solid":       0.5,
	"stable":      0.5,
	"useful":      0.5,
	"wonderful":   0.8,
	"works":       0.4,

	// Negative
	"angry":          -0.7,
	"annoying":       -0.6,
	"awful":          -0.9,
	"bad":            -0.6,
	"broken":         -0.7,
	"bug":            -0.6,
	"buggy":          -0.7,
	"bugs":           -0.6,
	"complicated":    -0.4,
	"confusing":      -0.5,
	"crash":          -0.8,
	"crashes":        -0.8,
	"difficult":      -0.4,
	"disappointed":   -0.7,
	"disappointing":  -0.7,
	"error":          -0.5,
	"errors":         -0.5,
	"expensive":      -0.4,
	"fails":          -0.7,
	"failing":        -0.7,
	"freezes":        -0.7,
	"frustrating":    -0.7,
	"garbage":        -0.9,
	"glitch":         -0.6,
	"glitchy":        -0.6,
	"hate":           -0.9,
	"horrible":       -0.9,
	"issue":          -0.4,
	"issues":         -0.4,
	"laggy":          -0.6,
	"missing":        -0.4,
	"poor":           -0.6,
	"problem":        -0.4,
	"problems":       -0.4,
	"refund":         -0.6,
	"ridiculous":     -0.6,
	"sad":            -0.5,
	"scam":           -0.9,
	"slow":           -0.5,
	"stuck":          -0.5,
	"terrible":       -0.9,
	"ugly":           -0.5,
	"unreliable":     -0.7,
	"unusable":       -0.9,
	"useless":        -0.8,
	"waste":          -0.7,
	"worse":          -0.6,
	"worst":          -0.9,
}

// negators flip the sign of the next valence word within the lookback window.
var negators = map[string]bool{
	"barely":    true,
	"can't":     true,
	"cannot":    true,
	"cant":      true,
	"couldn't":  true,
	"didn't":    true,
	"doesn't":   true,
	"don't":     true,
	"hardly":    true,
	"isn't":     true,
	"neither":   true,
	"never":     true,
	"no":        true,
	"nor":       true,
	"not":       true,
	"nothing":   true,
	"shouldn't": true,
	"wasn't":    true,
	"won't":     true,
	"wouldn't":  true,
}

// intensifiers scale the magnitude of the next valence word. Factors below
// one dampen ("slightly good"), above one amplify ("very good").
var intensifiers = map[string]float64{
	"absolutely": 1.8,
	"completely": 1.6,
	"extremely":  1.8,
	"fairly":     0.8,
	"incredibly": 1.8,
	"kinda":      0.8,
	"pretty":     1.2,
	"quite":      1.2,
	"really":     1.5,
	"slightly":   0.5,
	"so":         1.3,
	"somewhat":   0.7,
	"super":      1.5,
	"too":        1.3,
	"totally":    1.5,
	"utterly":    1.8,
	"very":       1.5,
}

// categoryKeywords holds single-token evidence per feedback category.
// Question evidence is phrase-only: bare interrogatives ("how", "why")
// appear in too many non-question texts to count on their own.
var categoryKeywords = map[string][]string{
	models.CategoryBug: {
		"bug", "bugs", "buggy", "broken", "corrupt", "corrupted", "crash",
		"crashed", "crashes", "crashing", "error", "errors", "exception",
		"fails", "failed", "failing", "freeze", "freezes", "frozen",
		"glitch", "glitches", "glitchy",
	},
	models.CategoryFeatureRequest: {
		"add", "feature", "features", "improve", "integrate", "integration",
		"missing", "request", "suggest", "suggestion", "wish",
	},
	models.CategoryPraise: {
		"amazing", "awesome", "best", "brilliant", "excellent", "fantastic",
		"great", "impressed", "love", "loved", "perfect", "thank", "thanks",
		"wonderful",
	},
	models.CategoryComplaint: {
		"ads", "annoying", "awful", "disappointed", "disappointing",
		"expensive", "frustrated", "frustrating", "hate", "laggy", "poor",
		"refund", "slow", "terrible", "unusable", "useless", "waste",
		"worst",
	},
}

// categoryPhrases holds multiword evidence, matched by substring against
// the lowercased text. Phrases count double: they are much stronger
// signals than isolated words.
var categoryPhrases = map[string][]string{
	models.CategoryBug: {
		"does not work", "doesn't work", "keeps crashing", "not working",
		"stopped working", "won't open", "won't start",
	},
	models.CategoryFeatureRequest: {
		"ability to", "can you add", "could you add", "option to",
		"please add", "should have", "support for", "would be nice",
		"would love to see",
	},
	models.CategoryQuestion: {
		"can i", "how can", "how do", "how to", "is there a way",
		"what is", "where is", "why can't", "why does", "why is",
	},
	models.CategoryComplaint: {
		"so slow", "too many ads", "too slow", "waste of money",
	},
	models.CategoryPraise: {
		"five stars", "highly recommend", "keep up", "well done",
	},
}

// classificationPriority breaks ties between equally scored categories.
// Defects first: a review that both reports a crash and vents frustration
// is a bug report.
var classificationPriority = []string{
	models.CategoryBug,
	models.CategoryFeatureRequest,
	models.CategoryQuestion,
	models.CategoryComplaint,
	models.CategoryPraise,
}

// stopwords are excluded from key-point phrase extraction. Domain noise
// ("app", "please") is included alongside ordinary function words.
var stopwords = map[string]bool{
	"a": true, "about": true, "after": true, "again": true, "all": true,
	"also": true, "am": true, "an": true, "and": true, "any": true,
	"app": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true,
	"but": true, "by": true, "can": true, "can't": true, "cant": true,
	"could": true, "did": true, "do": true, "does": true, "doesn't": true,
	"don't": true, "dont": true, "down": true, "even": true, "every": true,
	"for": true, "from": true,
	"get": true, "got": true, "had": true, "has": true, "have": true,
	"he": true, "her": true, "here": true, "him": true, "his": true,
	"how": true, "i": true, "i'm": true, "i've": true, "if": true,
	"im": true, "in": true, "into": true, "is": true, "it": true,
	"it's": true, "its": true, "ive": true, "just": true, "me": true,
	"more": true, "most": true, "much": true, "my": true, "no": true,
	"not": true, "of": true, "on": true, "once": true, "only": true,
	"or": true, "other": true, "our": true, "out": true, "over": true,
	"please": true, "really": true, "she": true, "should": true,
	"so": true, "some": true, "still": true, "than": true, "that": true,
	"the": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "time": true,
	"to": true, "too": true, "under": true, "up": true, "us": true,
	"use": true, "used": true, "using": true, "very": true, "was": true,
	"way": true, "we": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "who": true, "why": true,
	"will": true, "with": true, "would": true, "you": true, "your": true,
}
