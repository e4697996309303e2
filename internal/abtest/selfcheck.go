package abtest

import "fmt"

// fixtureBotAgents is the fixed user-agent list the self-check must pin to
// control. New crawler strings get appended here as they show up in logs.
var fixtureBotAgents = []string{
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	"Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
	"Mozilla/5.0 (compatible; YandexBot/3.0; +http://yandex.com/bots)",
	"DuckDuckBot/1.0; (+http://duckduckgo.com/duckduckbot.html)",
	"Mozilla/5.0 (compatible; Baiduspider/2.0; +http://www.baidu.com/search/spider.html)",
	"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/120.0 Safari/537.36",
	"Chrome-Lighthouse",
}

// SelfCheck asserts the invariants the assignment scheme depends on:
// no more than two variants exist, and every known crawler user agent
// resolves to control. It runs in cmd/validate so a bad bot pattern is a
// build failure, not a production incident.
func SelfCheck() error {
	if len(Variants) > 2 {
		return fmt.Errorf("abtest: %d variants defined, max 2", len(Variants))
	}
	for _, ua := range fixtureBotAgents {
		if !IsBot(ua) {
			return fmt.Errorf("abtest: known crawler not classified as bot: %q", ua)
		}
	}
	return nil
}
