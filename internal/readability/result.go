package readability

// Article is the result of a successful Parse.
type Article struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	CoverURL   string `json:"coverUrl,omitempty"`
	Byline     string `json:"byline,omitempty"`
	Dir        string `json:"dir,omitempty"`
	HTML       string `json:"html"`
	Text       string `json:"text"`
	Length     int    `json:"length"`
	Excerpt    string `json:"excerpt,omitempty"`
	SiteName   string `json:"siteName,omitempty"`
	AuthorName string `json:"authorName,omitempty"`
	Domain     string `json:"domain,omitempty"`
	RTL        bool   `json:"rtl"`
	Lang       string `json:"lang,omitempty"`

	WordsCount  int    `json:"wordsCount"`
	ReadSeconds int    `json:"readSeconds"`
	ReadTime    string `json:"readTime"`

	Outline []OutlineEntry `json:"outline"`
	Links   []Link         `json:"links"`
}

// OutlineEntry is one heading of the cleaned article.
type OutlineEntry struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Link is one external link of the cleaned article.
type Link struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
}
