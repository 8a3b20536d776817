package platformimpl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/pkg/formatter"
)

// fileRef is the {name, path} pair the API uses for a post's inline file and
// attachment stubs. The matching server is carried separately in the
// attachments/previews/videos arrays.
type fileRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type servedFile struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Server string `json:"server"`
}

type embedJSON struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Url         string `json:"url"`
}

type postJSON struct {
	Id          string     `json:"id"`
	User        string     `json:"user"`
	Service     string     `json:"service"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Embed       *embedJSON `json:"embed"`
	File        *fileRef   `json:"file"`
	Attachments []fileRef  `json:"attachments"`
}

type postResponse struct {
	Post        postJSON     `json:"post"`
	Attachments []servedFile `json:"attachments"`
	Previews    []servedFile `json:"previews"`
	Videos      []servedFile `json:"videos"`
}

func (p *PlatformImpl) GetPost(ctx context.Context, ref domain.PostReference) (*domain.PostRecord, error) {
	u, err := p.apiURL(ref.Platform, fmt.Sprintf("/%s/user/%s/post/%s", ref.Service, ref.UserID, ref.PostID))
	if err != nil {
		return nil, err
	}

	var resp postResponse
	if err := p.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	record := &domain.PostRecord{
		Reference:   ref,
		Title:       resp.Post.Title,
		Description: resp.Post.Content,
	}

	if e := resp.Post.Embed; e != nil && e.Url != "" {
		label := e.Subject
		if label == "" {
			label = e.Description
		}
		record.Embeds = append(record.Embeds, domain.Embed{Label: label, URL: e.Url})
	}

	record.Attachments = collectAttachments(resp)

	p.logger.Debug("Fetched post",
		"post_id", ref.PostID,
		"attachments", len(record.Attachments),
		"embeds", len(record.Embeds))
	return record, nil
}

// collectAttachments merges the inline file, attachment stubs, videos and
// previews into one ordered, URL-de-duplicated manifest.
func collectAttachments(resp postResponse) []domain.Attachment {
	served := make([]servedFile, 0, len(resp.Attachments)+len(resp.Previews)+len(resp.Videos))
	served = append(served, resp.Attachments...)
	served = append(served, resp.Previews...)
	served = append(served, resp.Videos...)

	serverFor := func(path string) (string, bool) {
		for _, s := range served {
			if s.Path == path && s.Server != "" {
				return s.Server, true
			}
		}
		return "", false
	}

	var (
		out  []domain.Attachment
		seen = map[string]bool{}
	)
	add := func(name, rawURL string) {
		if rawURL == "" || seen[rawURL] {
			return
		}
		seen[rawURL] = true
		out = append(out, domain.Attachment{Filename: name, URL: rawURL})
	}

	if f := resp.Post.File; f != nil && f.Path != "" {
		if server, ok := serverFor(f.Path); ok {
			add(f.Name, dataURL(server, f.Path, f.Name))
		}
	}
	for _, a := range resp.Post.Attachments {
		if server, ok := serverFor(a.Path); ok {
			add(a.Name, dataURL(server, a.Path, a.Name))
		}
	}
	for _, v := range resp.Videos {
		if v.Server != "" {
			add(v.Name, dataURL(v.Server, v.Path, v.Name))
		}
	}
	for _, pv := range resp.Previews {
		if pv.Server != "" {
			add(pv.Name, dataURL(pv.Server, pv.Path, ""))
		}
	}
	return out
}

// dataURL builds the file server URL for a served path. The ?f= query names
// the download so browsers and logs show something readable.
func dataURL(server, path, name string) string {
	u := server + "/data" + path
	if name != "" {
		u += "?f=" + url.QueryEscape(formatter.AdaptFileName(name))
	}
	return u
}
