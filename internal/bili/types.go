package bili

import (
	"fmt"
	"strings"
)

// RecommendData is the payload of the home feed endpoint.
type RecommendData struct {
	Items []VideoItem `json:"item"`
}

// VideoItem is one recommended video card.
type VideoItem struct {
	ID       int64       `json:"id"`
	Bvid     string      `json:"bvid"`
	Cid      int64       `json:"cid"`
	Goto     string      `json:"goto"`
	URI      string      `json:"uri"`
	Pic      string      `json:"pic"`
	Title    string      `json:"title"`
	Duration int64       `json:"duration"`
	Pubdate  int64       `json:"pubdate"`
	Owner    *VideoOwner `json:"owner"`
	Stat     *VideoStat  `json:"stat"`
}

// VideoOwner is the uploader of a video.
type VideoOwner struct {
	Mid  int64  `json:"mid"`
	Name string `json:"name"`
	Face string `json:"face"`
}

// VideoStat carries play counters for a video.
type VideoStat struct {
	View    int64 `json:"view"`
	Like    int64 `json:"like"`
	Danmaku int64 `json:"danmaku"`
}

// FormatDuration renders the duration as mm:ss.
func (v VideoItem) FormatDuration() string {
	return formatSeconds(v.Duration)
}

// FormatViews renders the view counter compactly (1.2万 above ten thousand).
func (v VideoItem) FormatViews() string {
	if v.Stat == nil {
		return "-"
	}
	return formatCount(v.Stat.View)
}

// AuthorName returns the uploader name or a dash placeholder.
func (v VideoItem) AuthorName() string {
	if v.Owner == nil || v.Owner.Name == "" {
		return "-"
	}
	return v.Owner.Name
}

// SearchData is the payload of a typed video search.
type SearchData struct {
	Result     []SearchVideoItem `json:"result"`
	NumResults int               `json:"numResults"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pagesize"`
}

// SearchVideoItem is one video search hit.
type SearchVideoItem struct {
	Bvid        string `json:"bvid"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Pic         string `json:"pic"`
	Play        int64  `json:"play"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Danmaku     int64  `json:"danmaku"`
	Mid         int64  `json:"mid"`
}

// DisplayTitle strips the keyword-highlight markup the search API embeds
// in titles.
func (s SearchVideoItem) DisplayTitle() string {
	title := s.Title
	if title == "" {
		return "(untitled)"
	}
	title = strings.ReplaceAll(title, `<em class="keyword">`, "")
	return strings.ReplaceAll(title, "</em>", "")
}

// FormatPlay renders the play counter compactly.
func (s SearchVideoItem) FormatPlay() string {
	return formatCount(s.Play)
}

// CoverURL returns the cover image URL with a scheme; the API hands back
// protocol-relative URLs.
func (s SearchVideoItem) CoverURL() string {
	if strings.HasPrefix(s.Pic, "//") {
		return "https:" + s.Pic
	}
	return s.Pic
}

// HistoryData is one page of watch history.
type HistoryData struct {
	Cursor HistoryCursor `json:"cursor"`
	List   []HistoryItem `json:"list"`
}

// HistoryCursor paginates the history feed.
type HistoryCursor struct {
	Max      int64  `json:"max"`
	ViewAt   int64  `json:"view_at"`
	Business string `json:"business"`
	PS       int    `json:"ps"`
}

// HistoryItem is one watched entry.
type HistoryItem struct {
	Title      string      `json:"title"`
	Cover      string      `json:"cover"`
	Covers     []string    `json:"covers"`
	History    HistoryMeta `json:"history"`
	AuthorName string      `json:"author_name"`
	ViewAt     int64       `json:"view_at"`
	Progress   int64       `json:"progress"`
	Duration   int64       `json:"duration"`
	Badge      string      `json:"badge"`
	ShowTitle  string      `json:"show_title"`
}

// HistoryMeta identifies the watched object.
type HistoryMeta struct {
	Oid      int64  `json:"oid"`
	Epid     int64  `json:"epid"`
	Bvid     string `json:"bvid"`
	Page     int    `json:"page"`
	Cid      int64  `json:"cid"`
	Part     string `json:"part"`
	Business string `json:"business"`
}

// IsVideo reports whether the entry is playable as a video.
func (h HistoryItem) IsVideo() bool {
	return (h.History.Business == "archive" || h.History.Business == "pgc") && h.History.Bvid != ""
}

// FormatProgress renders "watched/total" as mm:ss pairs.
func (h HistoryItem) FormatProgress() string {
	return formatSeconds(h.Progress) + "/" + formatSeconds(h.Duration)
}

// DynamicFeedData is one page of the followed-uploaders feed.
type DynamicFeedData struct {
	Items   []DynamicItem `json:"items"`
	Offset  string        `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// DynamicItem is one feed entry. The interesting payload sits several
// levels deep in the module tree; accessors below flatten it.
type DynamicItem struct {
	IDStr   string `json:"id_str"`
	Type    string `json:"type"`
	Modules struct {
		Author struct {
			Name    string `json:"name"`
			Mid     int64  `json:"mid"`
			PubTime string `json:"pub_time"`
		} `json:"module_author"`
		Dynamic struct {
			Major struct {
				Type    string `json:"type"`
				Archive struct {
					Bvid         string `json:"bvid"`
					Title        string `json:"title"`
					Cover        string `json:"cover"`
					DurationText string `json:"duration_text"`
					Stat         struct {
						Play    string `json:"play"`
						Danmaku string `json:"danmaku"`
					} `json:"stat"`
				} `json:"archive"`
			} `json:"major"`
		} `json:"module_dynamic"`
	} `json:"modules"`
}

// IsVideo reports whether this entry wraps a video archive.
func (d DynamicItem) IsVideo() bool {
	return d.Modules.Dynamic.Major.Type == "MAJOR_TYPE_ARCHIVE" &&
		d.Modules.Dynamic.Major.Archive.Bvid != ""
}

// AuthorName returns the posting uploader's name.
func (d DynamicItem) AuthorName() string {
	if d.Modules.Author.Name == "" {
		return "-"
	}
	return d.Modules.Author.Name
}

// VideoBvid returns the wrapped archive's bvid, empty for non-video items.
func (d DynamicItem) VideoBvid() string {
	return d.Modules.Dynamic.Major.Archive.Bvid
}

// VideoTitle returns the wrapped archive's title.
func (d DynamicItem) VideoTitle() string {
	return d.Modules.Dynamic.Major.Archive.Title
}

// VideoPlay returns the archive's play counter as the API formats it.
func (d DynamicItem) VideoPlay() string {
	if p := d.Modules.Dynamic.Major.Archive.Stat.Play; p != "" {
		return p
	}
	return "-"
}

// VideoInfo is the view payload for one video.
type VideoInfo struct {
	Bvid  string      `json:"bvid"`
	Aid   int64       `json:"aid"`
	Cid   int64       `json:"cid"`
	Title string      `json:"title"`
	Desc  string      `json:"desc"`
	Owner VideoOwner  `json:"owner"`
	Stat  VideoStat   `json:"stat"`
	Pages []VideoPage `json:"pages"`
}

// VideoPage is one part of a multi-part video.
type VideoPage struct {
	Cid      int64  `json:"cid"`
	Page     int    `json:"page"`
	Part     string `json:"part"`
	Duration int64  `json:"duration"`
}

func formatSeconds(secs int64) string {
	if secs <= 0 {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatCount(n int64) string {
	switch {
	case n <= 0:
		return "-"
	case n >= 10000:
		return fmt.Sprintf("%.1f万", float64(n)/10000.0)
	default:
		return fmt.Sprintf("%d", n)
	}
}
