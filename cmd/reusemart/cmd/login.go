package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/domain/dispatch"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

var (
	loginEmail    string
	loginPassword string
	loginGuest    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to ReuseMart",
	Long: `Log in with your ReuseMart email and password.

The same login serves buyers, consignors and staff; the backend decides the
role. The password is read from --password, the REUSEMART_PASSWORD
environment variable, or prompted on stdin.

Use --guest to browse without an account.

Examples:
  reusemart login --email budi@example.com
  reusemart login --guest`,
	RunE: runApp(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE:  runApp(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored role and the view it dispatches to",
	RunE:  runApp(runWhoami),
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prefer REUSEMART_PASSWORD or the prompt)")
	loginCmd.Flags().BoolVar(&loginGuest, "guest", false, "continue as a guest")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if loginGuest {
		if err := a.auth.LoginAsGuest(ctx); err != nil {
			return err
		}
		return message(cmd, map[string]string{"role": string(session.RoleGuest)}, "Browsing as a guest.")
	}

	in := bufio.NewReader(cmd.InOrStdin())
	email := loginEmail
	if email == "" {
		email = prompt(in, cmd.ErrOrStderr(), "Email: ")
	}
	password := loginPassword
	if password == "" {
		password = os.Getenv("REUSEMART_PASSWORD")
	}
	if password == "" {
		password = prompt(in, cmd.ErrOrStderr(), "Password: ")
	}

	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	_, view := a.resolver.Resolve(ctx)
	out := struct {
		Name    string        `json:"name" yaml:"name"`
		Role    string        `json:"role" yaml:"role"`
		SubRole string        `json:"sub_role,omitempty" yaml:"sub_role,omitempty"`
		View    dispatch.View `json:"view" yaml:"view"`
	}{res.Name, res.Role, res.SubRole, view}
	name := res.Name
	if name == "" {
		name = email
	}
	return message(cmd, out, "Logged in as %s (%s).", name, view)
}

func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func runLogout(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	return message(cmd, map[string]bool{"logged_out": true}, "Logged out.")
}

type whoami struct {
	Phase         string        `json:"phase" yaml:"phase"`
	Role          string        `json:"role,omitempty" yaml:"role,omitempty"`
	SubRole       string        `json:"sub_role,omitempty" yaml:"sub_role,omitempty"`
	ActorID       string        `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	View          dispatch.View `json:"view" yaml:"view"`
	Authenticated bool          `json:"authenticated" yaml:"authenticated"`
	TokenExpiry   *time.Time    `json:"token_expiry,omitempty" yaml:"token_expiry,omitempty"`
	Hydrated      bool          `json:"hydrated" yaml:"hydrated"`
}

func runWhoami(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	sess, st, view := a.session(ctx)
	out := whoami{
		Phase:         st.Phase.String(),
		Role:          sess.Role,
		SubRole:       sess.SubRole,
		ActorID:       sess.ActorID,
		View:          view,
		Authenticated: sess.Authenticated(),
		Hydrated:      a.cache.Hydrated(),
	}
	if exp, ok := session.TokenExpiry(sess.Token); ok {
		out.TokenExpiry = &exp
	}
	return emit(cmd, out, func(w io.Writer) {
		if st.Phase == dispatch.LoggedOut {
			fmt.Fprintln(w, "Not logged in.")
			return
		}
		fmt.Fprintf(w, "Role:\t%s\n", orDash(sess.Role))
		fmt.Fprintf(w, "Jabatan:\t%s\n", orDash(sess.SubRole))
		fmt.Fprintf(w, "View:\t%s\n", view)
		if sess.ActorID != "" {
			fmt.Fprintf(w, "Pegawai ID:\t%s\n", sess.ActorID)
		}
		switch {
		case out.TokenExpiry != nil:
			state := "valid"
			if out.TokenExpiry.Before(time.Now()) {
				state = "expired"
			}
			fmt.Fprintf(w, "Token:\t%s until %s\n", state, out.TokenExpiry.Format(time.RFC3339))
		case sess.Authenticated():
			fmt.Fprintln(w, "Token:\tpresent (opaque)")
		default:
			fmt.Fprintln(w, "Token:\tnone")
		}
	})
}

// requireLogin rejects the logged-out and guest states with a hint.
func requireLogin(view dispatch.View) error {
	switch view {
	case dispatch.LoginPrompt:
		return errors.New("not logged in: run `reusemart login`")
	case dispatch.GuestView:
		return errors.New("not available for guests: run `reusemart login`")
	}
	return nil
}

// requireSession rejects commands that need a logged-in account.
func requireSession(ctx context.Context, a *app) error {
	_, _, view := a.session(ctx)
	return requireLogin(view)
}
