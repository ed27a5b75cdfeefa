package scoring

import "github.com/deusflow/newsmin/internal/news"

// Terms that signal wide-reaching events.
var highImpactKeywords = []string{
	"war", "conflict", "nuclear", "missile", "invasion", "attack",
	"president", "election", "government", "parliament", "treaty",
	"climate", "earthquake", "hurricane", "disaster", "emergency",
	"breakthrough", "discovery", "cure", "vaccine", "ai", "artificial intelligence",
	"billion", "trillion", "crash", "recession", "inflation",
	"death", "killed", "massacre", "genocide", "terrorism",
}

var mediumImpactKeywords = []string{
	"policy", "law", "regulation", "trade", "economy", "market",
	"research", "study", "report", "analysis", "investigation",
	"company", "corporation", "merger", "acquisition", "ipo",
	"protest", "demonstration", "strike", "union", "rights",
}

// Outlets that earn the credibility bonus. Matched against the source domain.
var credibleSources = []string{"bbc", "nytimes", "reuters", "ap", "npr", "guardian", "economist"}

// categoryKeywords is always walked in news.Categories order.
var categoryKeywords = map[news.Category][]string{
	news.CategoryPolitics:    {"president", "election", "government", "parliament", "congress", "senate", "minister", "vote", "policy", "political"},
	news.CategoryBusiness:    {"market", "stock", "company", "economy", "trade", "investment", "ceo", "profit", "revenue", "merger"},
	news.CategoryTechnology:  {"tech", "software", "app", "ai", "artificial intelligence", "robot", "digital", "cyber", "startup", "innovation"},
	news.CategoryScience:     {"research", "study", "scientist", "discovery", "experiment", "space", "nasa", "physics", "biology", "chemistry"},
	news.CategoryEnvironment: {"climate", "environment", "carbon", "emission", "pollution", "renewable", "sustainable", "wildlife", "conservation"},
	news.CategoryHealth:      {"health", "medical", "doctor", "hospital", "disease", "vaccine", "treatment", "patient", "drug", "medicine"},
	news.CategorySociety:     {"community", "social", "rights", "protest", "immigration", "education", "crime", "justice", "poverty"},
	news.CategoryCulture:     {"art", "music", "film", "movie", "book", "museum", "festival", "celebrity", "entertainment", "culture"},
	news.CategorySports:      {"sport", "game", "match", "team", "player", "championship", "league", "score", "win", "tournament"},
}
