// Модели данных YouTube Data API v3.

package youtube

import (
	"html"
	"time"

	ytapi "google.golang.org/api/youtube/v3"
)

// Video — видео в том виде, в каком его получают модель и UI.
//
// Передаётся по значению и не изменяется после создания.
type Video struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt,omitzero"`
}

// URL возвращает ссылку на просмотр.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

// Рейтинги для Rate.
const (
	RatingLike = "like"
	RatingNone = "none"
)

// Системные плейлисты аккаунта.
const (
	PlaylistLiked   = "LL"
	PlaylistHistory = "HL"
)

// MaxResultsLimit — верхняя граница maxResults у search и playlistItems.
const MaxResultsLimit = 50

// thumbnailURL выбирает medium, затем high, затем default.
func thumbnailURL(t *ytapi.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, size := range []*ytapi.Thumbnail{t.Medium, t.High, t.Default} {
		if size != nil && size.Url != "" {
			return size.Url
		}
	}
	return ""
}

func parsePublishedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// searchVideos отбрасывает не-видео (каналы, плейлисты) и режет до limit.
func searchVideos(items []*ytapi.SearchResult, limit int) []Video {
	out := make([]Video, 0, len(items))
	for _, item := range items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := Video{VideoID: item.Id.VideoId}
		if sn := item.Snippet; sn != nil {
			v.Title = html.UnescapeString(sn.Title)
			v.ThumbnailURL = thumbnailURL(sn.Thumbnails)
			v.ChannelTitle = html.UnescapeString(sn.ChannelTitle)
			v.PublishedAt = parsePublishedAt(sn.PublishedAt)
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

// playlistVideos берёт канал владельца видео, а не плейлиста, если он есть.
func playlistVideos(items []*ytapi.PlaylistItem, limit int) []Video {
	out := make([]Video, 0, len(items))
	for _, item := range items {
		if item == nil || item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.VideoId == "" {
			continue
		}
		sn := item.Snippet
		channel := sn.VideoOwnerChannelTitle
		if channel == "" {
			channel = sn.ChannelTitle
		}
		out = append(out, Video{
			VideoID:      sn.ResourceId.VideoId,
			Title:        html.UnescapeString(sn.Title),
			ThumbnailURL: thumbnailURL(sn.Thumbnails),
			ChannelTitle: html.UnescapeString(channel),
			PublishedAt:  parsePublishedAt(sn.PublishedAt),
		})
		if len(out) == limit {
			break
		}
	}
	return out
}
