package view

import (
	"net/url"
	"strings"
)

// VideoEmbed is the player of a recognized video link.
type VideoEmbed struct {
	Platform string
	Label    string
	EmbedURL string
}

type videoPlatform struct {
	name  string
	label string
	hosts []string
	// videoID extracts the id from a parsed link, "" when absent.
	videoID func(u *url.URL, segments []string) string
	player  func(id string) string
}

var videoPlatforms = []videoPlatform{
	{
		name:  "youtube",
		label: "YouTube",
		hosts: []string{"youtube.com", "youtu.be"},
		videoID: func(u *url.URL, segments []string) string {
			if strings.EqualFold(u.Hostname(), "youtu.be") {
				return first(segments, 0)
			}
			switch first(segments, 0) {
			case "watch":
				return u.Query().Get("v")
			case "shorts", "embed", "live":
				return first(segments, 1)
			}
			return ""
		},
		player: func(id string) string {
			return "https://www.youtube.com/embed/" + url.PathEscape(id)
		},
	},
	{
		name:  "bilibili",
		label: "Bilibili",
		hosts: []string{"bilibili.com"},
		videoID: func(_ *url.URL, segments []string) string {
			if first(segments, 0) != "video" {
				return ""
			}
			return first(segments, 1)
		},
		player: func(id string) string {
			key := "bvid"
			if strings.HasPrefix(strings.ToLower(id), "av") {
				key, id = "aid", id[2:]
			}
			return "https://player.bilibili.com/player.html?" + url.Values{key: {id}}.Encode()
		},
	},
	{
		name:  "douyin",
		label: "Douyin",
		hosts: []string{"douyin.com", "iesdouyin.com"},
		videoID: func(u *url.URL, segments []string) string {
			for i, segment := range segments {
				if segment == "video" {
					return first(segments, i+1)
				}
				if id, ok := strings.CutPrefix(segment, "modal_id="); ok {
					return id
				}
			}
			return u.Query().Get("modal_id")
		},
		player: func(id string) string {
			return "https://www.iesdouyin.com/share/video/" + url.PathEscape(id)
		},
	},
}

// ParseVideoLink recognizes YouTube, Bilibili and Douyin links and returns nil
// for anything else. A missing scheme is read as https.
func ParseVideoLink(raw string) *VideoEmbed {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for _, platform := range videoPlatforms {
		if !matchesHost(u.Hostname(), platform.hosts) {
			continue
		}
		if id := platform.videoID(u, segments); id != "" {
			return &VideoEmbed{Platform: platform.name, Label: platform.label, EmbedURL: platform.player(id)}
		}
		return nil
	}
	return nil
}

func matchesHost(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func first(segments []string, i int) string {
	if i < len(segments) {
		return segments[i]
	}
	return ""
}
