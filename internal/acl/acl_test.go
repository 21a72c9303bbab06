package acl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndCan(t *testing.T) {
	a := New()
	a.Parse([]string{"community.foo.leader", " Admin.User ", ""})

	require.True(t, a.Can("community.foo.leader"))
	require.True(t, a.Can("admin.user"))
	require.False(t, a.Can("community.bar.leader"))
	require.False(t, a.Can(""))
	require.Equal(t, []string{"admin.user", "community.foo.leader"}, a.Permissions())
}

func TestWildcards(t *testing.T) {
	a := New()
	a.Parse([]string{"community.foo.*"})
	require.True(t, a.Can("community.foo.leader"))
	require.True(t, a.Can("community.foo.member.invite"))
	require.False(t, a.Can("community.bar.leader"))
	require.False(t, a.Can("community.foo"))

	a.Parse([]string{"*"})
	require.True(t, a.Can("anything.at.all"))
}

func TestParseReplacesAndClear(t *testing.T) {
	a := New()
	a.Parse([]string{"a.b"})
	a.Parse([]string{"c.d"})
	require.False(t, a.Can("a.b"))
	require.True(t, a.CanAny("x.y", "c.d"))

	a.Clear()
	require.False(t, a.Can("c.d"))
	require.Empty(t, a.Permissions())
}
