package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/logger"
	"github.com/straye-as/projecthub/internal/session"
	"go.uber.org/zap"
)

func newLoginCmd(a *app) *cobra.Command {
	var authID, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if authID, err = a.prompt("ID", authID); err != nil {
				return err
			}
			if password, err = a.promptSecret("Password", password); err != nil {
				return err
			}

			member, err := a.services.Auth.Login(cmd.Context(), domain.LoginRequest{AuthID: authID, Password: password})
			if err != nil {
				return err
			}
			logger.WithMember(a.log, member).Info("Logged in")
			return a.done("logged in as %s (%s)", member.Name, member.Role)
		},
	}
	cmd.Flags().StringVarP(&authID, "id", "u", "", "account id")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.services.Auth.Logout(); err != nil {
				return err
			}
			return a.done("logged out")
		},
	}
}

type whoami struct {
	Member    *domain.Member `json:"member"`
	Roles     []string       `json:"roles,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member and token lifetime",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := a.store.Token()
			if token == "" {
				return domain.ErrNotLoggedIn
			}

			member, err := a.services.Users.Me(cmd.Context())
			if err != nil {
				return err
			}

			info := whoami{Member: member}
			if claims, err := session.ParseClaims(a.store.Token()); err == nil {
				info.Roles = claims.Roles
				if !claims.ExpiresAt.IsZero() {
					exp := claims.ExpiresAt
					info.ExpiresAt = &exp
				}
			} else {
				a.log.Debug("token is not a readable JWT", zap.Error(err))
			}

			return a.render(info, "", func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%s\n", member.AuthID)
				fmt.Fprintf(w, "Name\t%s\n", member.Name)
				fmt.Fprintf(w, "Role\t%s\n", member.Role)
				fmt.Fprintf(w, "Company\t%s\n", dash(member.CompanyName))
				if len(info.Roles) > 0 {
					fmt.Fprintf(w, "Token roles\t%s\n", strings.Join(info.Roles, ", "))
				}
				if info.ExpiresAt != nil {
					fmt.Fprintf(w, "Expires\t%s (%s left)\n",
						info.ExpiresAt.Local().Format(time.DateTime),
						time.Until(*info.ExpiresAt).Truncate(time.Second))
				}
			})
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	var req domain.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Password, err = a.promptSecret("Password", req.Password); err != nil {
				return err
			}
			if err := a.services.Auth.Signup(cmd.Context(), req); err != nil {
				return err
			}
			return a.done("account %s created", req.AuthID)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.AuthID, "id", "u", "", "account id")
	f.StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	f.StringVar(&req.Name, "name", "", "display name")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.Int64Var(&req.CompanyID, "company", 0, "company id")
	f.StringVar(&req.Position, "position", "", "job title")
	return cmd
}

func newPasswordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Recover or change a password",
	}

	var email string
	sendCode := &cobra.Command{
		Use:   "send-code",
		Short: "Email a verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.services.Auth.SendCode(cmd.Context(), domain.SendCodeRequest{Email: email}); err != nil {
				return err
			}
			return a.done("verification code sent to %s", email)
		},
	}
	sendCode.Flags().StringVar(&email, "email", "", "account email")

	var verify domain.VerifyCodeRequest
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.services.Auth.VerifyCode(cmd.Context(), verify)
			if err != nil {
				return err
			}
			if !env.IsSuccess() {
				return env.Err()
			}
			return a.done("code verified")
		},
	}
	verifyCmd.Flags().StringVar(&verify.Email, "email", "", "account email")
	verifyCmd.Flags().StringVar(&verify.Code, "code", "", "code from the email")

	var reset domain.ResetPasswordRequest
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if reset.NewPassword, err = a.promptSecret("New password", reset.NewPassword); err != nil {
				return err
			}
			if reset.ConfirmPassword == "" {
				reset.ConfirmPassword = reset.NewPassword
			}
			if err := a.services.Auth.ResetPassword(cmd.Context(), reset); err != nil {
				return err
			}
			return a.done("password reset")
		},
	}
	resetCmd.Flags().StringVar(&reset.Email, "email", "", "account email")
	resetCmd.Flags().StringVar(&reset.Code, "code", "", "code from the email")
	resetCmd.Flags().StringVar(&reset.NewPassword, "new", "", "new password (prompted when omitted)")

	var change domain.ChangePasswordRequest
	changeCmd := &cobra.Command{
		Use:   "change",
		Short: "Change the signed-in member's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if change.CurrentPassword, err = a.promptSecret("Current password", change.CurrentPassword); err != nil {
				return err
			}
			if change.NewPassword, err = a.promptSecret("New password", change.NewPassword); err != nil {
				return err
			}
			if err := a.services.Users.ChangePassword(cmd.Context(), change); err != nil {
				return err
			}
			return a.done("password changed")
		},
	}
	changeCmd.Flags().StringVar(&change.CurrentPassword, "current", "", "current password")
	changeCmd.Flags().StringVar(&change.NewPassword, "new", "", "new password")

	cmd.AddCommand(sendCode, verifyCmd, resetCmd, changeCmd)
	return cmd
}
