package domain

// Platform identifies one of the two supported content hosts.
type Platform string

const (
	PlatformKemono Platform = "kemono"
	PlatformCoomer Platform = "coomer"
)

// PostReference uniquely identifies a fetchable post. Immutable once created.
type PostReference struct {
	Platform Platform
	Service  string
	UserID   string
	PostID   string
}

// ProfileReference identifies an author's account on a platform.
type ProfileReference struct {
	Platform Platform
	Service  string
	UserID   string
}

func (r PostReference) Profile() ProfileReference {
	return ProfileReference{Platform: r.Platform, Service: r.Service, UserID: r.UserID}
}

// Embed is an embedded external link inside a post.
type Embed struct {
	Label string
	URL   string
}

// Attachment is a downloadable file referenced by a post.
type Attachment struct {
	Filename string
	URL      string
}

// PostRecord is the fetched metadata and file manifest for a single post.
// Read-only downstream of the fetcher.
type PostRecord struct {
	Reference   PostReference
	Title       string
	Description string
	Embeds      []Embed
	Attachments []Attachment
}

// IsEmpty reports whether the post has neither attachments nor embeds.
func (p *PostRecord) IsEmpty() bool {
	return len(p.Attachments) == 0 && len(p.Embeds) == 0
}

// Profile is the author metadata cached per platform in profiles.json.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Service   string `json:"service"`
	Indexed   string `json:"indexed,omitempty"`
	Updated   string `json:"updated,omitempty"`
	PublicID  string `json:"public_id,omitempty"`
	PostCount int    `json:"post_count"`
}
