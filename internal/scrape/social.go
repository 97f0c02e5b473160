package scrape

import (
	"regexp"
	"strings"

	"github.com/sells-group/storefront-insights/internal/model"
)

type socialPattern struct {
	platform model.Platform
	re       *regexp.Regexp
	format   func(handle string) string
}

// Patterns require a leading "//" so unrelated hosts ending in "x.com"
// never match.
var socialPatterns = []socialPattern{
	{
		platform: model.PlatformInstagram,
		re:       regexp.MustCompile(`(?i)//(?:[a-z]+\.)?instagram\.com/([A-Za-z0-9_.]+)`),
		format:   func(h string) string { return "https://www.instagram.com/" + h },
	},
	{
		platform: model.PlatformFacebook,
		re:       regexp.MustCompile(`(?i)//(?:[a-z]+\.)?facebook\.com/([A-Za-z0-9_.\-]+)`),
		format:   func(h string) string { return "https://www.facebook.com/" + h },
	},
	{
		platform: model.PlatformTwitter,
		re:       regexp.MustCompile(`(?i)//(?:[a-z]+\.)?(?:twitter|x)\.com/([A-Za-z0-9_]+)`),
		format:   func(h string) string { return "https://twitter.com/" + h },
	},
	{
		platform: model.PlatformTikTok,
		re:       regexp.MustCompile(`(?i)//(?:[a-z]+\.)?tiktok\.com/@([A-Za-z0-9_.]+)`),
		format:   func(h string) string { return "https://www.tiktok.com/@" + h },
	},
	{
		platform: model.PlatformYouTube,
		re:       regexp.MustCompile(`(?i)//(?:[a-z]+\.)?youtube\.com/((?:channel/|user/|c/)?@?[A-Za-z0-9_.\-]+)`),
		format:   func(h string) string { return "https://www.youtube.com/" + h },
	},
	{
		platform: model.PlatformPinterest,
		re:       regexp.MustCompile(`(?i)//(?:[a-z]+\.)?pinterest\.com/([A-Za-z0-9_.\-]+)`),
		format:   func(h string) string { return "https://www.pinterest.com/" + h },
	},
}

// Path segments that are share widgets or content pages, not profiles.
var reservedHandles = map[string]bool{
	"share": true, "sharer": true, "sharer.php": true, "intent": true,
	"dialog": true, "plugins": true, "tr": true, "home": true, "home.php": true,
	"p": true, "reel": true, "explore": true, "watch": true, "embed": true,
	"pin": true, "widgets.js": true, "i": true, "hashtag": true, "search": true,
	"login": true, "signup": true, "privacy": true, "policies": true,
}

// SocialHandles finds the first profile link per platform anywhere in the
// raw markup and normalizes it to a canonical profile URL.
func SocialHandles(markup string) model.SocialHandles {
	var out model.SocialHandles
	for _, sp := range socialPatterns {
		for _, m := range sp.re.FindAllStringSubmatch(markup, -1) {
			handle := strings.TrimRight(m[1], ".")
			if handle == "" || reservedHandles[strings.ToLower(handle)] {
				continue
			}
			out.Set(sp.platform, sp.format(handle))
			break
		}
	}
	return out
}
