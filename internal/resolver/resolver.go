// Package resolver turns user-supplied links, IDs and range expressions into
// normalized post and profile references. Bad tokens are reported one by one;
// the rest of the batch still resolves.
package resolver

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/kcgrab/kcgrab/internal/domain"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
)

var splitPattern = regexp.MustCompile(`[,\s]+`)

// maxOffsetDigits separates page offsets from post IDs in range expressions:
// offsets are at most 5 digits, platform post IDs are longer.
const maxOffsetDigits = 5

// Split breaks comma/space/newline-delimited input into trimmed tokens.
func Split(input string) []string {
	parts := splitPattern.Split(input, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func platformForHost(host string) (domain.Platform, bool) {
	switch {
	case strings.HasPrefix(host, "kemono."):
		return domain.PlatformKemono, true
	case strings.HasPrefix(host, "coomer."):
		return domain.PlatformCoomer, true
	default:
		return "", false
	}
}

// PostLink parses a direct post URL of the form
// https://<host>/<service>/user/<user_id>/post/<post_id>.
func PostLink(link string) (domain.PostReference, error) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return domain.PostReference{}, apperrors.MalformedInput(link, "not a URL")
	}

	pf, ok := platformForHost(u.Host)
	if !ok {
		return domain.PostReference{}, apperrors.MalformedInput(link, "unsupported domain "+u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 5 || parts[1] != "user" || parts[3] != "post" {
		return domain.PostReference{}, apperrors.MalformedInput(link, "expected <service>/user/<user_id>/post/<post_id>")
	}

	return domain.PostReference{
		Platform: pf,
		Service:  parts[0],
		UserID:   parts[2],
		PostID:   parts[4],
	}, nil
}

// ProfileLink parses a profile URL of the form
// https://<host>/<service>/user/<user_id>.
func ProfileLink(link string) (domain.ProfileReference, error) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return domain.ProfileReference{}, apperrors.MalformedInput(link, "not a URL")
	}

	pf, ok := platformForHost(u.Host)
	if !ok {
		return domain.ProfileReference{}, apperrors.MalformedInput(link, "unsupported domain "+u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[1] != "user" {
		return domain.ProfileReference{}, apperrors.MalformedInput(link, "expected <service>/user/<user_id>")
	}

	return domain.ProfileReference{Platform: pf, Service: parts[0], UserID: parts[2]}, nil
}

// PostLinks resolves a delimited batch of post URLs. Every malformed token
// produces its own error; valid entries keep their input order.
func PostLinks(input string) ([]domain.PostReference, []error) {
	var (
		refs []domain.PostReference
		errs []error
	)
	for _, token := range Split(input) {
		ref, err := PostLink(token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs, errs
}

// PostIDs resolves a delimited batch of bare post IDs against a profile.
func PostIDs(profile domain.ProfileReference, input string) ([]domain.PostReference, []error) {
	var (
		refs []domain.PostReference
		errs []error
	)
	for _, token := range Split(input) {
		if !isDigits(token) {
			errs = append(errs, apperrors.MalformedInput(token, "post ID must be numeric"))
			continue
		}
		refs = append(refs, domain.PostReference{
			Platform: profile.Platform,
			Service:  profile.Service,
			UserID:   profile.UserID,
			PostID:   token,
		})
	}
	return refs, errs
}

// Selection parses a profile fetch-mode expression:
//
//	"all"            every post
//	"<offset>"       one page at that offset (up to 5 digits)
//	"<id>"           one post, by ID (longer than 5 digits)
//	"start-end"      offset range; "start" and "end" are keywords for the
//	                 listing bounds, e.g. "0-100", "start-150", "50-end"
//	"<id1>-<id2>"    every post between two boundary post IDs, inclusive
func Selection(mode string) (domain.Selection, error) {
	mode = strings.TrimSpace(mode)

	if mode == "all" || mode == "" {
		return domain.SelectionAll(), nil
	}

	if isDigits(mode) {
		if len(mode) <= maxOffsetDigits {
			n, _ := strconv.Atoi(mode)
			return domain.SelectionPage(n), nil
		}
		return domain.SelectionBetween(mode, mode), nil
	}

	before, after, found := strings.Cut(mode, "-")
	if !found {
		return domain.Selection{}, apperrors.MalformedInput(mode, "unrecognized fetch mode")
	}

	if isOffsetBound(before) && isOffsetBound(after) {
		start := 0
		if before != "start" {
			start, _ = strconv.Atoi(before)
		}
		end := -1 // resolved to the listing length by the lister
		if after != "end" {
			end, _ = strconv.Atoi(after)
		}
		if end >= 0 && end <= start {
			return domain.Selection{}, apperrors.MalformedInput(mode, "empty offset range")
		}
		return domain.SelectionRange(start, end), nil
	}

	if isDigits(before) && isDigits(after) {
		return domain.SelectionBetween(before, after), nil
	}

	return domain.Selection{}, apperrors.MalformedInput(mode, "unrecognized fetch mode")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isOffsetBound(s string) bool {
	if s == "start" || s == "end" {
		return true
	}
	return isDigits(s) && len(s) <= maxOffsetDigits
}
