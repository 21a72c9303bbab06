package main

import (
	"time"

	"github.com/spf13/cobra"
)

type whoami struct {
	LoggedIn        bool           `json:"loggedIn"`
	User            map[string]any `json:"user,omitempty"`
	Permissions     []string       `json:"permissions,omitempty"`
	ExpiresAt       *time.Time     `json:"expiresAt,omitempty"`
	PendingRedirect string         `json:"pendingRedirect,omitempty"`
}

func (a *app) whoami(cmd *cobra.Command) whoami {
	w := whoami{LoggedIn: a.session.LoggedIn()}
	if w.LoggedIn {
		w.User = a.session.User()
		w.Permissions = a.session.ACL().Permissions()
		if exp := a.session.DecodedToken().Expiry(); !exp.IsZero() {
			w.ExpiresAt = &exp
		}
	}
	if p, ok := a.session.PendingRedirect(cmd.Context()); ok {
		w.PendingRedirect = p
	}
	return w
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in through Steam",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "url",
		Short: "Print the Steam login URL to open in a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.GetLoginRedirectURL(cmd.Context()); err != nil {
				return shown(err)
			}
			return a.print(cmd, map[string]string{"url": a.session.LoginRedirectURL()})
		},
	})

	var callback string
	complete := &cobra.Command{
		Use:   "complete",
		Short: "Finish the login with the URL Steam redirected back to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.PerformLogin(cmd.Context(), map[string]any{"url": callback}); err != nil {
				return shown(err)
			}
			return a.print(cmd, a.whoami(cmd))
		},
	}
	complete.Flags().StringVar(&callback, "callback", "", "callback URL including the openid.* parameters")
	_ = complete.MarkFlagRequired("callback")
	cmd.AddCommand(complete)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.PerformLogout(cmd.Context()); err != nil {
				return err
			}
			return a.print(cmd, a.whoami(cmd))
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the session token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.session.RefreshToken(cmd.Context()); err != nil {
				return shown(err)
			}
			return a.print(cmd, a.whoami(cmd))
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(cmd, a.whoami(cmd))
		},
	}
}

func newRedirectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redirect <path>",
		Short: "Remember a page to continue at after the next login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.SetRedirect(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.print(cmd, a.whoami(cmd))
		},
	}
}

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or edit the account of the logged in user",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Load the account details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.session.GetAccountDetails(cmd.Context()); err != nil {
				return shown(err)
			}
			return a.print(cmd, a.session.AccountDetails())
		},
	})

	var sets []string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Change account fields, e.g. --set nickname=Alpha",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			payload, err := parseSet(sets)
			if err != nil {
				return err
			}
			if err := a.session.EditAccount(cmd.Context(), payload); err != nil {
				return shown(err)
			}
			return a.print(cmd, a.session.AccountDetails())
		},
	}
	edit.Flags().StringArrayVar(&sets, "set", nil, "field to change as key=value (repeatable)")
	_ = edit.MarkFlagRequired("set")
	cmd.AddCommand(edit)
	return cmd
}
