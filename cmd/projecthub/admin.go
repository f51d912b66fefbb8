package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/domain"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator operations",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage member accounts",
	}

	var (
		filter domain.MemberFilter
		role   string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "" {
				r, err := domain.ParseMemberRole(role)
				if err != nil {
					return err
				}
				filter.Role = r
			}
			result, err := a.services.Admin.ListUsers(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render(result, "ID\tACCOUNT\tNAME\tCOMPANY\tROLE\tSTATUS", func(w *tabwriter.Writer) {
				for _, m := range result.Content {
					state := "active"
					if m.Deleted {
						state = "disabled"
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.AuthID, m.Name, dash(m.CompanyName), m.Role, state)
				}
				pageFooter(w, result)
			})
		},
	}
	list.Flags().StringVar(&filter.Keyword, "keyword", "", "name or account search")
	list.Flags().StringVar(&role, "role", "", "USER or ADMIN")
	addPageFlags(list, &filter.PageParams)

	var (
		create     domain.CreateMemberRequest
		createRole string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseMemberRole(createRole)
			if err != nil {
				return err
			}
			create.Role = r
			if create.Password, err = a.promptSecret("Password", create.Password); err != nil {
				return err
			}
			m, err := a.services.Admin.CreateUser(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.done("account %s created with id %d", m.AuthID, m.ID)
		},
	}
	f := createCmd.Flags()
	f.StringVarP(&create.AuthID, "id", "u", "", "account id")
	f.StringVarP(&create.Password, "password", "p", "", "initial password (prompted when omitted)")
	f.StringVar(&create.Name, "name", "", "display name")
	f.StringVar(&create.Email, "email", "", "email address")
	f.StringVar(&create.Phone, "phone", "", "phone number")
	f.StringVar(&createRole, "role", string(domain.MemberRoleUser), "USER or ADMIN")
	f.Int64Var(&create.CompanyID, "company", 0, "company id")
	f.StringVar(&create.Position, "position", "", "job title")

	toggle := func(use, short string, deleted bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <member-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.services.Admin.SetUserStatus(cmd.Context(), id, deleted); err != nil {
					return err
				}
				return a.done("account %d %sd", id, use)
			},
		}
	}

	users.AddCommand(list, createCmd,
		toggle("enable", "Re-enable a disabled account", false),
		toggle("disable", "Disable an account", true),
	)
	cmd.AddCommand(users)
	return cmd
}

func newLogsCmd(a *app) *cobra.Command {
	var (
		filter domain.LogFilter
		action string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Browse the audit log (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if action != "" {
				act, err := domain.ParseLogAction(action)
				if err != nil {
					return err
				}
				filter.Action = act
			}
			result, err := a.services.Admin.ListLogs(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render(result, "ID\tWHEN\tACTION\tENTITY\tACTOR", func(w *tabwriter.Writer) {
				for _, l := range result.Content {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s#%d\t%s\n",
						l.ID, formatTime(l.CreatedAt), l.Action, l.EntityName, l.EntityID, dash(l.ActorName))
				}
				pageFooter(w, result)
			})
		},
	}
	cmd.Flags().StringVar(&filter.EntityName, "entity", "", "entity name, e.g. Project")
	cmd.Flags().StringVar(&action, "action", "", "CREATE, UPDATE or DELETE")
	addPageFlags(cmd, &filter.PageParams)
	return cmd
}
