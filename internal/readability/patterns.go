package readability

import "regexp"

// Pattern labels. The heuristics look patterns up by label so the tables can
// be extended without touching control flow.
const (
	patUnlikely      = "unlikelyCandidates"
	patOkMaybe       = "okMaybeItsACandidate"
	patPositive      = "positive"
	patNegative      = "negative"
	patImagePositive = "imagePositive"
	patImageNegative = "imageNegative"
	patByline        = "byline"
	patVideos        = "videos"
	patShare         = "shareElements"
	patCodeHighlight = "codeHighlight"
	patProtected     = "protectedClass"
	patSentenceEnd   = "sentenceEnd"
	patCommas        = "commas"
	patHashURL       = "hashUrl"
	patSrcsetURL     = "srcsetUrl"
	patB64DataURL    = "b64DataUrl"
	patImageExt      = "imageExt"
	patSrcsetValue   = "srcsetValue"
	patSrcValue      = "srcValue"
	patDisplayNone   = "displayNone"
	patStyleWidth    = "styleWidth"
	patStyleHeight   = "styleHeight"
	patSrcsetWidth   = "srcsetWidth"
	patTitleSep      = "titleSeparator"
	patTitleHier     = "titleHierarchical"
	patMetaProperty  = "metaProperty"
	patMetaName      = "metaName"
	patBylinePrefix  = "bylinePrefix"
	patTitleLast     = "titleLastPart"
	patTitleFirst    = "titleFirstPart"
	patTitleSepChars = "titleSeparatorChars"
)

var patterns = compilePatterns(map[string]string{
	patUnlikely: `(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote`,
	patOkMaybe:   `(?i)and|article|body|column|content|main|shadow`,
	patPositive:  `(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`,
	patNegative:  `(?i)-ad-|hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`,
	// Applied on top of the generic weights for img, picture, figure and svg.
	patImagePositive: `(?i)hero|featured|article-image|main-image|wp-image|wp-post-image|attachment|figure|photo`,
	patImageNegative: `(?i)sprite|icon|favicon|logo|avatar|emoji|placeholder|pixel|tracker|\bads?\b|adserver|promo|beacon|badge|spinner`,

	patByline:        `(?i)byline|author|dateline|writtenby|p-author`,
	patVideos:        `(?i)//(www\.)?((dailymotion|youtube|youtube-nocookie|player\.vimeo|v\.qq)\.com|(archive|upload\.wikimedia)\.org|player\.twitch\.tv)`,
	patShare:         `(?i)(\b|_)(share|sharedaddy)(\b|_)`,
	patCodeHighlight: `(?i)highlight|hljs|prism|language-|lang-|syntax|codehilite|sourcecode|brush:`,
	patProtected:     `(^|\s)(ros-keep|ros-picked)(\s|$)`,
	patSentenceEnd:   `\.( |$)`,
	patCommas:        `[\x{002C}\x{060C}\x{FE50}\x{FE10}\x{FE11}\x{2E41}\x{2E34}\x{2E32}\x{FF0C}]`,
	patHashURL:       `^#.+`,
	patSrcsetURL:     `(\S+)(\s+[\d.]+[xw])?(\s*(?:,|$))`,
	patB64DataURL:    `(?i)^data:\s*([^\s;,]+)\s*;\s*base64\s*,`,
	patImageExt:      `(?i)\.(jpg|jpeg|png|webp|gif|avif)`,
	patSrcsetValue:   `(?i)\.(jpg|jpeg|png|webp|gif|avif)\S*\s+\d`,
	patSrcValue:      `(?i)^\s*\S+\.(jpg|jpeg|png|webp|gif|avif)\S*\s*$`,
	patDisplayNone:   `(?i)display\s*:\s*none`,
	patStyleWidth:    `(?i)(?:^|;|\s)width\s*:\s*(\d+(?:\.\d+)?)px\b`,
	patStyleHeight:   `(?i)(?:^|;|\s)height\s*:\s*(\d+(?:\.\d+)?)px\b`,
	patSrcsetWidth:   `(\S+)\s+(\d+)w`,
	patTitleSep:      ` [\|\-\\/>»] `,
	patTitleHier:     ` [\\/>»] `,
	patMetaProperty:  `(?i)\s*(article|dc|dcterm|og|twitter)\s*:\s*(author|creator|description|title|site_name|image|image:width|image:height)\s*`,
	patMetaName:      `(?i)^\s*(?:(dc|dcterm|og|twitter|weibo:(?:article|webpage))\s*[\.:]\s*)?(author|creator|description|title|site_name|image)\s*$`,
	patTitleLast:     `(.*)[\|\-\\/>»] .*`,
	patTitleFirst:    `[^\|\-\\/>»]*[\|\-\\/>»](.*)`,
	patTitleSepChars: `[\|\-\\/>»]+`,
	patBylinePrefix:  `(?i)^\s*(by|from|written by|posted by|von|par|por|di)\s*[:\-]?\s+`,
})

func compilePatterns(src map[string]string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(src))
	for label, expr := range src {
		out[label] = regexp.MustCompile(expr)
	}
	return out
}

// Tag tables.
var (
	tagsToScore = map[string]bool{
		"section": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"p": true, "td": true, "pre": true,
	}

	emptyRemovableTags = map[string]bool{
		"div": true, "section": true, "header": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}

	// blockLevelTags keep their tag when absorbed as a sibling of the root.
	blockLevelTags = map[string]bool{
		"div": true, "article": true, "section": true, "p": true, "table": true,
		"ul": true, "ol": true, "dl": true, "blockquote": true, "pre": true,
		"figure": true, "picture": true, "h1": true, "h2": true, "h3": true,
		"h4": true, "h5": true, "h6": true, "header": true, "main": true, "aside": true,
	}

	mediaTags = map[string]bool{
		"img": true, "picture": true, "video": true, "audio": true, "iframe": true,
		"svg": true, "object": true, "embed": true, "canvas": true, "source": true,
	}

	imageLikeTags = map[string]bool{
		"img": true, "picture": true, "figure": true, "svg": true,
	}

	presentationalAttributes = []string{
		"align", "background", "bgcolor", "border", "cellpadding", "cellspacing",
		"frame", "hspace", "rules", "style", "valign", "vspace",
	}

	deprecatedSizeAttributeElems = map[string]bool{
		"table": true, "th": true, "td": true, "hr": true, "pre": true,
	}

	// lazyImageAttrs mark images whose real source is filled in by script.
	lazyImageAttrs = []string{
		"data-src", "data-srcset", "data-original", "data-lazy-src", "data-lazy-srcset",
		"data-url", "data-hi-res-src", "data-lazy",
	}
)

// pickedClass is added to elements chosen by a site extractElems selector.
const pickedClass = "ros-picked"
