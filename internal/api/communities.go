package api

import (
	"context"
	"net/http"
	"net/url"
)

// ApplicationStatus is the decision sent when processing an application.
type ApplicationStatus string

const (
	StatusAccepted ApplicationStatus = "accepted"
	StatusDenied   ApplicationStatus = "denied"
)

type processApplicationBody struct {
	Status ApplicationStatus `json:"status"`
}

func (c *Client) ApplyToCommunity(ctx context.Context, slug string) (*Response, error) {
	return c.do(ctx, "applyToCommunity", http.MethodPost, "/v1/communities/"+seg(slug)+"/applications", nil, nil)
}

func (c *Client) CheckCommunitySlugAvailability(ctx context.Context, slug string) (*Response, error) {
	q := url.Values{}
	q.Set("slug", slug)
	return c.do(ctx, "checkCommunitySlugAvailability", http.MethodGet, "/v1/communities/slugAvailable", q, nil)
}

func (c *Client) CreateCommunity(ctx context.Context, payload map[string]any) (*Response, error) {
	return c.do(ctx, "createCommunity", http.MethodPost, "/v1/communities", nil, payloadOrEmpty(payload))
}

func (c *Client) DeleteCommunity(ctx context.Context, slug string) (*Response, error) {
	return c.do(ctx, "deleteCommunity", http.MethodDelete, "/v1/communities/"+seg(slug), nil, nil)
}

func (c *Client) EditCommunity(ctx context.Context, slug string, payload map[string]any) (*Response, error) {
	return c.do(ctx, "editCommunity", http.MethodPatch, "/v1/communities/"+seg(slug), nil, payloadOrEmpty(payload))
}

func (c *Client) GetCommunities(ctx context.Context, page Page) (*Response, error) {
	return c.do(ctx, "getCommunities", http.MethodGet, "/v1/communities", page.values(), nil)
}

func (c *Client) GetCommunityApplications(ctx context.Context, slug string, page Page) (*Response, error) {
	return c.do(ctx, "getCommunityApplications", http.MethodGet, "/v1/communities/"+seg(slug)+"/applications", page.values(), nil)
}

func (c *Client) GetCommunityDetails(ctx context.Context, slug string) (*Response, error) {
	return c.do(ctx, "getCommunityDetails", http.MethodGet, "/v1/communities/"+seg(slug), nil, nil)
}

func (c *Client) GetCommunityMissions(ctx context.Context, slug string, page Page) (*Response, error) {
	return c.do(ctx, "getCommunityMissions", http.MethodGet, "/v1/communities/"+seg(slug)+"/missions", page.values(), nil)
}

// ProcessCommunityApplication accepts or denies the application identified
// by applicationUID.
func (c *Client) ProcessCommunityApplication(ctx context.Context, slug, applicationUID string, accepted bool) (*Response, error) {
	status := StatusDenied
	if accepted {
		status = StatusAccepted
	}
	path := "/v1/communities/" + seg(slug) + "/applications/" + seg(applicationUID)
	return c.do(ctx, "processCommunityApplication", http.MethodPatch, path, nil, processApplicationBody{Status: status})
}

func (c *Client) RemoveCommunityMember(ctx context.Context, slug, memberUID string) (*Response, error) {
	path := "/v1/communities/" + seg(slug) + "/members/" + seg(memberUID)
	return c.do(ctx, "removeCommunityMember", http.MethodDelete, path, nil, nil)
}

func (c *Client) SearchCommunities(ctx context.Context, term string) (*Response, error) {
	q := url.Values{}
	q.Set("search", term)
	return c.do(ctx, "searchCommunities", http.MethodGet, "/v1/communities", q, nil)
}

// payloadOrEmpty keeps create/edit calls sending a JSON object even when the
// caller has nothing to set.
func payloadOrEmpty(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
