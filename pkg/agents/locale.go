package agents

import "strings"

// LanguageInfo describes one supported response language.
type LanguageInfo struct {
	Name   string
	Native string
	Code   string
}

// languages is fixed reference data; lookups fall back to English.
var languages = map[string]LanguageInfo{
	"english":   {Name: "English", Native: "English", Code: "en"},
	"hindi":     {Name: "Hindi", Native: "हिन्दी", Code: "hi"},
	"marathi":   {Name: "Marathi", Native: "मराठी", Code: "mr"},
	"gujarati":  {Name: "Gujarati", Native: "ગુજરાતી", Code: "gu"},
	"bengali":   {Name: "Bengali", Native: "বাংলা", Code: "bn"},
	"tamil":     {Name: "Tamil", Native: "தமிழ்", Code: "ta"},
	"telugu":    {Name: "Telugu", Native: "తెలుగు", Code: "te"},
	"kannada":   {Name: "Kannada", Native: "ಕನ್ನಡ", Code: "kn"},
	"malayalam": {Name: "Malayalam", Native: "മലയാളം", Code: "ml"},
	"punjabi":   {Name: "Punjabi", Native: "ਪੰਜਾਬੀ", Code: "pa"},
	"urdu":      {Name: "Urdu", Native: "اردو", Code: "ur"},
}

// lookupLanguage resolves a language code case-insensitively, defaulting to
// English for unknown codes.
func lookupLanguage(code string) LanguageInfo {
	if info, ok := languages[strings.ToLower(code)]; ok {
		return info
	}
	return languages["english"]
}

// contextAdaptations lists teaching adaptations per learning context.
var contextAdaptations = map[string][]string{
	"rural":  {"village examples", "farming analogies", "local festivals", "low-cost materials"},
	"urban":  {"city examples", "technology references", "public transport analogies"},
	"tribal": {"nature examples", "oral storytelling", "community traditions"},
}

// lookupAdaptations returns the adaptation list for a context, defaulting to
// the rural set.
func lookupAdaptations(context string) []string {
	if adaptations, ok := contextAdaptations[strings.ToLower(context)]; ok {
		return adaptations
	}
	return contextAdaptations["rural"]
}
