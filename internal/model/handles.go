package model

import "strings"

// Platform is a known social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformPinterest Platform = "pinterest"
)

// AllPlatforms returns the known platforms in display order.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformInstagram,
		PlatformFacebook,
		PlatformTwitter,
		PlatformTikTok,
		PlatformYouTube,
		PlatformPinterest,
	}
}

// SocialHandles holds at most one profile URL per known platform.
type SocialHandles struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	Pinterest string `json:"pinterest,omitempty"`
}

func (h *SocialHandles) field(p Platform) *string {
	switch p {
	case PlatformInstagram:
		return &h.Instagram
	case PlatformFacebook:
		return &h.Facebook
	case PlatformTwitter:
		return &h.Twitter
	case PlatformTikTok:
		return &h.TikTok
	case PlatformYouTube:
		return &h.YouTube
	case PlatformPinterest:
		return &h.Pinterest
	}
	return nil
}

// Get returns the profile URL for p, or "" when absent or unknown.
func (h SocialHandles) Get(p Platform) string {
	if f := h.field(p); f != nil {
		return *f
	}
	return ""
}

// Set records url for p. The first recorded value wins; it reports whether
// the value was stored.
func (h *SocialHandles) Set(p Platform, url string) bool {
	f := h.field(p)
	if f == nil || *f != "" || url == "" {
		return false
	}
	*f = url
	return true
}

// Populated returns the platforms that have a profile URL.
func (h SocialHandles) Populated() []Platform {
	var out []Platform
	for _, p := range AllPlatforms() {
		if h.Get(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// LinkCategory is a kind of navigational link worth surfacing.
type LinkCategory string

const (
	LinkOrderTracking LinkCategory = "order_tracking"
	LinkContactUs     LinkCategory = "contact_us"
	LinkBlogs         LinkCategory = "blogs"
	LinkShippingInfo  LinkCategory = "shipping_info"
	LinkSizeGuide     LinkCategory = "size_guide"
)

// AllLinkCategories returns the link categories in match priority order.
func AllLinkCategories() []LinkCategory {
	return []LinkCategory{
		LinkOrderTracking,
		LinkContactUs,
		LinkBlogs,
		LinkShippingInfo,
		LinkSizeGuide,
	}
}

// ImportantLinks holds at most one absolute URL per link category.
type ImportantLinks struct {
	OrderTracking string `json:"order_tracking,omitempty"`
	ContactUs     string `json:"contact_us,omitempty"`
	Blogs         string `json:"blogs,omitempty"`
	ShippingInfo  string `json:"shipping_info,omitempty"`
	SizeGuide     string `json:"size_guide,omitempty"`
}

func (l *ImportantLinks) field(c LinkCategory) *string {
	switch c {
	case LinkOrderTracking:
		return &l.OrderTracking
	case LinkContactUs:
		return &l.ContactUs
	case LinkBlogs:
		return &l.Blogs
	case LinkShippingInfo:
		return &l.ShippingInfo
	case LinkSizeGuide:
		return &l.SizeGuide
	}
	return nil
}

// Get returns the URL for c, or "".
func (l ImportantLinks) Get(c LinkCategory) string {
	if f := l.field(c); f != nil {
		return *f
	}
	return ""
}

// Set records url for c unless a value is already present.
func (l *ImportantLinks) Set(c LinkCategory, url string) bool {
	f := l.field(c)
	if f == nil || *f != "" || url == "" {
		return false
	}
	*f = url
	return true
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
