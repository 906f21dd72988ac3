package services

import "strings"

// ExcludedKeywords marks entries that are not purchasable games: extra
// content, test builds and media that the stores list alongside them.
var ExcludedKeywords = []string{
	"demo", "trial", "playtest", "beta", "dlc", "soundtrack", "trailer", "movie", "server",
}

// KeepName reports whether a listing name belongs to an actual game, i.e.
// contains none of the excluded keywords.
func KeepName(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range ExcludedKeywords {
		if strings.Contains(lower, keyword) {
			return false
		}
	}
	return true
}
