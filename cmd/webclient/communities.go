package main

import (
	"fmt"

	"github.com/slotlist/slotlist/frontend/go-client/internal/api"
	"github.com/slotlist/slotlist/frontend/go-client/internal/communities"
	"github.com/spf13/cobra"
)

func pageFlags(cmd *cobra.Command, p *api.Page) {
	cmd.Flags().IntVar(&p.Limit, "limit", api.DefaultLimit, "page size")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "page offset")
}

func newCommunitiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "communities",
		Aliases: []string{"community"},
		Short:   "Browse and manage communities",
	}

	var listPage api.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List communities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.respond(cmd)(a.client.GetCommunities(cmd.Context(), listPage))
		},
	}
	pageFlags(list, &listPage)

	search := &cobra.Command{
		Use:   "search <term>",
		Short: "Search communities by name, tag or slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.respond(cmd)(a.client.SearchCommunities(cmd.Context(), args[0]))
		},
	}

	get := &cobra.Command{
		Use:   "get <slug>",
		Short: "Show community details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.respond(cmd)(a.client.GetCommunityDetails(cmd.Context(), args[0]))
		},
	}

	slugAvailable := &cobra.Command{
		Use:   "slug-available <slug>",
		Short: "Check whether a slug is still free",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.respond(cmd)(a.client.CheckCommunitySlugAvailability(cmd.Context(), args[0]))
		},
	}

	var createSets []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a community, e.g. --set name=Alpha --set slug=alpha --set tag=A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseSet(createSets)
			if err != nil {
				return err
			}
			return a.respond(cmd)(a.client.CreateCommunity(cmd.Context(), payload))
		},
	}
	create.Flags().StringArrayVar(&createSets, "set", nil, "community field as key=value (repeatable)")

	var editSets []string
	edit := &cobra.Command{
		Use:   "edit <slug>",
		Short: "Change community fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLeader(args[0]); err != nil {
				return err
			}
			payload, err := parseSet(editSets)
			if err != nil {
				return err
			}
			return a.respond(cmd)(a.client.EditCommunity(cmd.Context(), args[0], payload))
		},
	}
	edit.Flags().StringArrayVar(&editSets, "set", nil, "community field as key=value (repeatable)")

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a community",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLeader(args[0]); err != nil {
				return err
			}
			return a.respond(cmd)(a.client.DeleteCommunity(cmd.Context(), args[0]))
		},
	}

	apply := &cobra.Command{
		Use:   "apply <slug>",
		Short: "Apply for membership",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.respond(cmd)(a.client.ApplyToCommunity(cmd.Context(), args[0]))
		},
	}

	var appPage api.Page
	applications := &cobra.Command{
		Use:   "applications <slug>",
		Short: "List membership applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLeader(args[0]); err != nil {
				return err
			}
			return a.respond(cmd)(a.client.GetCommunityApplications(cmd.Context(), args[0], appPage))
		},
	}
	pageFlags(applications, &appPage)

	var status string
	process := &cobra.Command{
		Use:   "process <slug> <applicationUid>",
		Short: "Accept or deny an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var accepted bool
			switch api.ApplicationStatus(status) {
			case api.StatusAccepted:
				accepted = true
			case api.StatusDenied:
			default:
				return fmt.Errorf("--status must be %q or %q", api.StatusAccepted, api.StatusDenied)
			}
			if err := a.requireLeader(args[0]); err != nil {
				return err
			}
			return a.respond(cmd)(a.client.ProcessCommunityApplication(cmd.Context(), args[0], args[1], accepted))
		},
	}
	process.Flags().StringVar(&status, "status", "", "accepted or denied")
	_ = process.MarkFlagRequired("status")

	var missionPage api.Page
	missions := &cobra.Command{
		Use:   "missions <slug>",
		Short: "List the community's missions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.respond(cmd)(a.client.GetCommunityMissions(cmd.Context(), args[0], missionPage))
		},
	}
	pageFlags(missions, &missionPage)

	removeMember := &cobra.Command{
		Use:   "remove-member <slug> <memberUid>",
		Short: "Remove a member from the community",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLeader(args[0]); err != nil {
				return err
			}
			return a.respond(cmd)(a.client.RemoveCommunityMember(cmd.Context(), args[0], args[1]))
		},
	}

	cmd.AddCommand(list, search, get, slugAvailable, create, edit, del, apply, applications, process, missions, removeMember)
	return cmd
}

// requireLeader mirrors the frontend hiding leader-only actions: without the
// permission in the current token the request is not sent.
func (a *app) requireLeader(slug string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.session.ACL().CanAny(communities.LeaderPermission(slug), communities.AdminPermission) {
		return fmt.Errorf("missing leader permission for %s (run \"webclient refresh\" after gaining it)", slug)
	}
	return nil
}
