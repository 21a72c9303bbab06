package communities

import "time"

// Community is a group of players that organises missions.
type Community struct {
	UID       string    `json:"uid"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Website   string    `json:"website,omitempty"`
	Leaders   []Member  `json:"leaders"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Member is the public user reference embedded in communities and
// applications.
type Member struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname"`
}

// ApplicationStatus values.
const (
	StatusSubmitted = "submitted"
	StatusAccepted  = "accepted"
	StatusDenied    = "denied"
)

// Application is a user's request to join a community.
type Application struct {
	UID       string    `json:"uid"`
	Community string    `json:"communitySlug"`
	User      Member    `json:"user"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Mission is the listing entry of a community's mission.
type Mission struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	Creator     Member    `json:"creator"`
}

// Patch carries the editable community fields; nil leaves a field as is.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Tag     *string `json:"tag,omitempty"`
	Website *string `json:"website,omitempty"`
}

// AdminPermission grants every community operation.
const AdminPermission = "admin.community"

// LeaderPermission is the permission that lets a user manage slug.
func LeaderPermission(slug string) string {
	return "community." + slug + ".leader"
}
