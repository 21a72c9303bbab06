package models

import "time"

// User is an account as served by the backend's account endpoints.
type User struct {
	UID         string       `json:"uid" bson:"uid"`
	SteamID     string       `json:"steamId" bson:"steamId"`
	Nickname    string       `json:"nickname" bson:"nickname"`
	Missions    []MissionRef `json:"missions" bson:"missions"`
	Permissions []Permission `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Permission is a single granted permission, e.g. "community.foo.leader".
type Permission struct {
	Permission string    `json:"permission" bson:"permission"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// MissionRef is the short mission listing embedded in account details.
type MissionRef struct {
	Slug  string `json:"slug" bson:"slug"`
	Title string `json:"title" bson:"title"`
}

// PermissionNames flattens Permissions into the form embedded in tokens.
func (u *User) PermissionNames() []string {
	out := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		out = append(out, p.Permission)
	}
	return out
}

// Public returns the user fields embedded in the token's "user" claim.
func (u *User) Public() map[string]interface{} {
	return map[string]interface{}{
		"uid":      u.UID,
		"nickname": u.Nickname,
		"steamId":  u.SteamID,
	}
}
