package bron

import "github.com/tidwall/gjson"

// Upstream payloads arrive in several historical shapes; each normalizer
// probes a chain of candidate paths and falls back to a zero value. The
// chains below mirror the shapes the upstream has actually served.

// Overview is the headline scorecard for a domain.
type Overview struct {
	Domain         string  `json:"domain"`
	SEOScore       float64 `json:"seo_score"`
	Authority      float64 `json:"authority"`
	MonthlyVisits  int64   `json:"monthly_visits"`
	IndexedPages   int64   `json:"indexed_pages"`
	HealthSummary  string  `json:"health_summary"`
	LastCrawledAt  string  `json:"last_crawled_at"`
	CompetitionLvl string  `json:"competition_level"`
}

// Keyword is one ranked search term.
type Keyword struct {
	Term     string  `json:"term"`
	Position int64   `json:"position"`
	Volume   int64   `json:"volume"`
	Trend    string  `json:"trend"`
	CPC      float64 `json:"cpc"`
}

// Backlinks summarizes the link profile.
type Backlinks struct {
	Total      int64 `json:"total"`
	Referring  int64 `json:"referring_domains"`
	Follow     int64 `json:"follow"`
	NoFollow   int64 `json:"nofollow"`
	NewLast30d int64 `json:"new_last_30d"`
}

// Competitor is one organic-search rival.
type Competitor struct {
	Domain      string  `json:"domain"`
	Overlap     float64 `json:"overlap"`
	Authority   float64 `json:"authority"`
	CommonTerms int64   `json:"common_terms"`
}

// TrafficPoint is one day of estimated traffic.
type TrafficPoint struct {
	Date    string `json:"date"`
	Visits  int64  `json:"visits"`
	Uniques int64  `json:"uniques"`
	Bounces int64  `json:"bounces"`
	Channel string `json:"channel"`
}

// Ranking is one tracked-position row.
type Ranking struct {
	Term     string `json:"term"`
	Position int64  `json:"position"`
	Change   int64  `json:"change"`
	URL      string `json:"url"`
}

// Technical is the site-audit summary.
type Technical struct {
	Score       float64 `json:"score"`
	Errors      int64   `json:"errors"`
	Warnings    int64   `json:"warnings"`
	PageSpeed   float64 `json:"page_speed"`
	MobileReady bool    `json:"mobile_ready"`
	HTTPS       bool    `json:"https"`
}

// ContentStats summarizes indexed content.
type ContentStats struct {
	Pages        int64   `json:"pages"`
	AvgWordCount int64   `json:"avg_word_count"`
	BlogPosts    int64   `json:"blog_posts"`
	Freshness    float64 `json:"freshness"`
}

// Social is the social-presence summary.
type Social struct {
	Followers  int64   `json:"followers"`
	Mentions   int64   `json:"mentions"`
	Engagement float64 `json:"engagement"`
	TopNetwork string  `json:"top_network"`
}

// Local is the local-listings summary.
type Local struct {
	Listings    int64   `json:"listings"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int64   `json:"review_count"`
	NAPScore    float64 `json:"nap_score"`
}

// Article is one normalized CADE content item.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at"`
	Tags        []string `json:"tags,omitempty"`
}

// Report is the aggregate of every section. Sections whose fetch failed hold
// their zero value; Errors lists the endpoints that failed.
type Report struct {
	Domain      string         `json:"domain"`
	Overview    Overview       `json:"overview"`
	Keywords    []Keyword      `json:"keywords"`
	Backlinks   Backlinks      `json:"backlinks"`
	Competitors []Competitor   `json:"competitors"`
	Traffic     []TrafficPoint `json:"traffic"`
	Rankings    []Ranking      `json:"rankings"`
	Technical   Technical      `json:"technical"`
	Content     ContentStats   `json:"content"`
	Social      Social         `json:"social"`
	Local       Local          `json:"local"`
	Errors      []string       `json:"errors,omitempty"`
}

func firstResult(root gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := root.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := root.Get(p); r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

func firstFloat(root gjson.Result, paths ...string) float64 {
	for _, p := range paths {
		if r := root.Get(p); r.Exists() {
			return r.Float()
		}
	}
	return 0
}

func firstInt(root gjson.Result, paths ...string) int64 {
	for _, p := range paths {
		if r := root.Get(p); r.Exists() {
			return r.Int()
		}
	}
	return 0
}

func normalizeOverview(raw []byte, domain string) Overview {
	root := gjson.ParseBytes(raw)
	return Overview{
		Domain:         domain,
		SEOScore:       firstFloat(root, "seo_score", "seoScore", "score", "data.seo_score"),
		Authority:      firstFloat(root, "authority", "domain_authority", "data.authority"),
		MonthlyVisits:  firstInt(root, "monthly_visits", "monthlyVisits", "visits", "data.monthly_visits"),
		IndexedPages:   firstInt(root, "indexed_pages", "indexedPages", "pages", "data.indexed_pages"),
		HealthSummary:  firstString(root, "health_summary", "healthSummary", "summary", "data.summary"),
		LastCrawledAt:  firstString(root, "last_crawled_at", "lastCrawled", "crawled_at", "data.last_crawled_at"),
		CompetitionLvl: firstString(root, "competition_level", "competitionLevel", "competition", "data.competition"),
	}
}

func normalizeKeywords(raw []byte) []Keyword {
	items := firstResult(gjson.ParseBytes(raw), "keywords", "data.keywords", "items", "data")
	var out []Keyword
	items.ForEach(func(_, item gjson.Result) bool {
		out = append(out, Keyword{
			Term:     firstString(item, "term", "keyword", "query", "name"),
			Position: firstInt(item, "position", "rank", "pos"),
			Volume:   firstInt(item, "volume", "search_volume", "searches"),
			Trend:    firstString(item, "trend", "direction"),
			CPC:      firstFloat(item, "cpc", "cost_per_click"),
		})
		return true
	})
	return out
}

func normalizeBacklinks(raw []byte) Backlinks {
	root := gjson.ParseBytes(raw)
	return Backlinks{
		Total:      firstInt(root, "total", "total_backlinks", "backlinks", "data.total"),
		Referring:  firstInt(root, "referring_domains", "referringDomains", "domains", "data.referring_domains"),
		Follow:     firstInt(root, "follow", "dofollow", "data.follow"),
		NoFollow:   firstInt(root, "nofollow", "no_follow", "data.nofollow"),
		NewLast30d: firstInt(root, "new_last_30d", "new_30d", "recent", "data.new_last_30d"),
	}
}

func normalizeCompetitors(raw []byte) []Competitor {
	items := firstResult(gjson.ParseBytes(raw), "competitors", "data.competitors", "items", "data")
	var out []Competitor
	items.ForEach(func(_, item gjson.Result) bool {
		out = append(out, Competitor{
			Domain:      firstString(item, "domain", "site", "url", "name"),
			Overlap:     firstFloat(item, "overlap", "similarity"),
			Authority:   firstFloat(item, "authority", "domain_authority"),
			CommonTerms: firstInt(item, "common_terms", "commonKeywords", "shared"),
		})
		return true
	})
	return out
}

func normalizeTraffic(raw []byte) []TrafficPoint {
	items := firstResult(gjson.ParseBytes(raw), "traffic", "data.traffic", "points", "series", "data")
	var out []TrafficPoint
	items.ForEach(func(_, item gjson.Result) bool {
		out = append(out, TrafficPoint{
			Date:    firstString(item, "date", "day", "ts"),
			Visits:  firstInt(item, "visits", "sessions", "count"),
			Uniques: firstInt(item, "uniques", "unique_visitors", "users"),
			Bounces: firstInt(item, "bounces", "bounce_count"),
			Channel: firstString(item, "channel", "source"),
		})
		return true
	})
	return out
}

func normalizeRankings(raw []byte) []Ranking {
	items := firstResult(gjson.ParseBytes(raw), "rankings", "data.rankings", "items", "data")
	var out []Ranking
	items.ForEach(func(_, item gjson.Result) bool {
		out = append(out, Ranking{
			Term:     firstString(item, "term", "keyword", "query"),
			Position: firstInt(item, "position", "rank"),
			Change:   firstInt(item, "change", "delta", "movement"),
			URL:      firstString(item, "url", "page", "landing_page"),
		})
		return true
	})
	return out
}

func normalizeTechnical(raw []byte) Technical {
	root := gjson.ParseBytes(raw)
	return Technical{
		Score:       firstFloat(root, "score", "health_score", "audit_score", "data.score"),
		Errors:      firstInt(root, "errors", "error_count", "data.errors"),
		Warnings:    firstInt(root, "warnings", "warning_count", "data.warnings"),
		PageSpeed:   firstFloat(root, "page_speed", "pageSpeed", "speed", "data.page_speed"),
		MobileReady: firstResult(root, "mobile_ready", "mobileReady", "mobile_friendly", "data.mobile_ready").Bool(),
		HTTPS:       firstResult(root, "https", "ssl", "secure", "data.https").Bool(),
	}
}

func normalizeContent(raw []byte) ContentStats {
	root := gjson.ParseBytes(raw)
	return ContentStats{
		Pages:        firstInt(root, "pages", "page_count", "data.pages"),
		AvgWordCount: firstInt(root, "avg_word_count", "avgWords", "word_count", "data.avg_word_count"),
		BlogPosts:    firstInt(root, "blog_posts", "posts", "data.blog_posts"),
		Freshness:    firstFloat(root, "freshness", "freshness_score", "data.freshness"),
	}
}

func normalizeSocial(raw []byte) Social {
	root := gjson.ParseBytes(raw)
	return Social{
		Followers:  firstInt(root, "followers", "total_followers", "data.followers"),
		Mentions:   firstInt(root, "mentions", "mention_count", "data.mentions"),
		Engagement: firstFloat(root, "engagement", "engagement_rate", "data.engagement"),
		TopNetwork: firstString(root, "top_network", "topNetwork", "best_network", "data.top_network"),
	}
}

func normalizeLocal(raw []byte) Local {
	root := gjson.ParseBytes(raw)
	return Local{
		Listings:    firstInt(root, "listings", "listing_count", "data.listings"),
		AvgRating:   firstFloat(root, "avg_rating", "rating", "data.avg_rating"),
		ReviewCount: firstInt(root, "review_count", "reviews", "data.review_count"),
		NAPScore:    firstFloat(root, "nap_score", "napScore", "consistency", "data.nap_score"),
	}
}

func normalizeArticles(raw []byte) []Article {
	items := firstResult(gjson.ParseBytes(raw), "articles", "data.articles", "content", "items", "data")
	var out []Article
	items.ForEach(func(_, item gjson.Result) bool {
		a := Article{
			ID:          firstString(item, "id", "article_id", "slug"),
			Title:       firstString(item, "title", "headline", "name"),
			Summary:     firstString(item, "summary", "description", "excerpt"),
			URL:         firstString(item, "url", "link", "permalink"),
			PublishedAt: firstString(item, "published_at", "publishedAt", "date", "created_at"),
		}
		firstResult(item, "tags", "topics", "categories").ForEach(func(_, tag gjson.Result) bool {
			if tag.String() != "" {
				a.Tags = append(a.Tags, tag.String())
			}
			return true
		})
		out = append(out, a)
		return true
	})
	return out
}
