package main

import (
	"fmt"

	"github.com/slotlist/slotlist/frontend/go-client/internal/acl"
	"github.com/slotlist/slotlist/frontend/go-client/internal/api"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/notify"
	"github.com/slotlist/slotlist/frontend/go-client/internal/session"
	"github.com/slotlist/slotlist/frontend/go-client/internal/storage"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/spf13/cobra"
)

// shownError marks an error the user already saw as an alert.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return &shownError{err: err}
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	configFile string
	apiURL     string
	output     string
	logLevel   string

	cfg     *config.Config
	store   storage.Store
	client  *api.Client
	alerts  notify.Notifier
	session *session.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "webclient",
		Short:         "Terminal client for the slotlist API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "YAML config file")
	f.StringVar(&a.apiURL, "api-url", "", "API base URL (overrides API_BASE_URL)")
	f.StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRefreshCmd(a),
		newWhoamiCmd(a),
		newRedirectCmd(a),
		newAccountCmd(a),
		newCommunitiesCmd(a),
		newWatchCmd(a),
	)
	return root
}

// setup loads configuration, opens storage and restores the persisted
// session. An expired session is dropped here.
func (a *app) setup(cmd *cobra.Command) error {
	if err := checkFormat(a.output); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger.Init(cfg.Log.Level)
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	a.cfg = cfg

	ctx := cmd.Context()
	st, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.store = st

	a.client = api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithAuthScheme(cfg.API.AuthScheme),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	errOut := cmd.ErrOrStderr()
	a.alerts = notify.NewConsole(errOut)
	a.session = session.New(a.client, st, acl.New(), a.alerts,
		session.WithNavigator(session.NavigatorFunc(func(path string) {
			fmt.Fprintf(errOut, "continue at %s\n", path)
		})),
	)

	if err := a.session.RestoreFromStorage(ctx); err != nil {
		logger.Debugf("restore session: %v", err)
	}
	a.session.CheckExpiry(ctx)
	return nil
}

// print renders v on stdout in the selected format.
func (a *app) print(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), a.output, v)
}

// respond returns a handler that checks an API reply, alerts on failure and
// prints the body. It takes the client call directly:
// a.respond(cmd)(a.client.GetCommunities(ctx, page)).
func (a *app) respond(cmd *cobra.Command) func(*api.Response, error) error {
	return func(resp *api.Response, err error) error {
		resp, err = api.Check(resp, err)
		if err != nil {
			a.alerts.ShowAlert(notify.Alert{Variant: notify.Danger, Message: "Request failed - " + api.Detail(err)})
			return shown(err)
		}
		return renderBody(cmd.OutOrStdout(), a.output, resp.Body)
	}
}

func (a *app) requireLogin() error {
	if !a.session.LoggedIn() {
		return fmt.Errorf("not logged in, run \"webclient login url\" first")
	}
	return nil
}
