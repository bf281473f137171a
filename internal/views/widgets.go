package views

import "net/url"

// Widget is an externally rendered statistics image
type Widget struct {
	Title string
	URL   string
}

// StatsWidgets returns the profile statistics images for username. The
// username is query-escaped; the images themselves are rendered by third
// parties.
func StatsWidgets(username string) []Widget {
	if username == "" {
		return nil
	}
	escaped := url.QueryEscape(username)
	return []Widget{
		{Title: "GitHub Stats", URL: "https://github-readme-stats.vercel.app/api?username=" + escaped},
		{Title: "Most Used Languages", URL: "https://github-readme-stats.vercel.app/api/top-langs/?username=" + escaped},
		{Title: "GitHub Trophies", URL: "https://github-profile-trophy.vercel.app/?username=" + escaped},
		{Title: "Contribution Streak", URL: "https://github-readme-streak-stats.herokuapp.com/?user=" + escaped},
	}
}
