package platformimpl

import (
	"context"
	"fmt"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/platform"
)

type profileResponse struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Service   string `json:"service"`
	Indexed   string `json:"indexed"`
	Updated   string `json:"updated"`
	PublicId  string `json:"public_id"`
	PostCount int    `json:"post_count"`
}

func (p *PlatformImpl) GetProfile(ctx context.Context, ref domain.ProfileReference) (*domain.Profile, error) {
	u, err := p.apiURL(ref.Platform, fmt.Sprintf("/%s/user/%s/profile", ref.Service, ref.UserID))
	if err != nil {
		return nil, err
	}

	var resp profileResponse
	if err := p.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	return &domain.Profile{
		ID:        resp.Id,
		Name:      resp.Name,
		Service:   resp.Service,
		Indexed:   resp.Indexed,
		Updated:   resp.Updated,
		PublicID:  resp.PublicId,
		PostCount: resp.PostCount,
	}, nil
}

type listingPostJSON struct {
	Id    string `json:"id"`
	Title string `json:"title"`
}

func (p *PlatformImpl) ListPage(ctx context.Context, ref domain.ProfileReference, offset int) ([]platform.ListingEntry, error) {
	path := fmt.Sprintf("/%s/user/%s/posts", ref.Service, ref.UserID)
	if offset > 0 {
		path += fmt.Sprintf("?o=%d", offset)
	}
	u, err := p.apiURL(ref.Platform, path)
	if err != nil {
		return nil, err
	}

	var posts []listingPostJSON
	if err := p.getJSON(ctx, u, &posts); err != nil {
		return nil, err
	}

	entries := make([]platform.ListingEntry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, platform.ListingEntry{PostID: post.Id, Title: post.Title})
	}
	return entries, nil
}
