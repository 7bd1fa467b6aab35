package types

// Wire shapes for the MediaWiki action API (search, pageimages, images,
// imageinfo). Pages come back as a map keyed by stringified page ID.

type WikiQueryResponse struct {
	Query WikiQuery `json:"query"`
}

type WikiQuery struct {
	Search []WikiSearchResult  `json:"search"`
	Pages  map[string]WikiPage `json:"pages"`
}

type WikiSearchResult struct {
	PageID int64  `json:"pageid"`
	Title  string `json:"title"`
}

type WikiPage struct {
	PageID    int64           `json:"pageid"`
	Title     string          `json:"title"`
	Thumbnail *WikiThumbnail  `json:"thumbnail,omitempty"`
	Images    []WikiImageRef  `json:"images,omitempty"`
	ImageInfo []WikiImageInfo `json:"imageinfo,omitempty"`
}

type WikiThumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type WikiImageRef struct {
	Title string `json:"title"`
}

type WikiImageInfo struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Mime   string `json:"mime"`
}
