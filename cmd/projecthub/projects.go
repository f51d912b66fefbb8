package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/domain"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
	}

	var (
		filter domain.ProjectFilter
		status string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects visible to the signed-in member",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				s, err := domain.ParseProjectStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}
			result, err := a.services.Projects.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render(result, "ID\tTITLE\tSTATUS\tPERIOD\tCLIENT\tDEVELOPER", func(w *tabwriter.Writer) {
				for _, p := range result.Content {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s ~ %s\t%s\t%s\n",
						p.ID, p.Title, p.Status, p.StartDate, p.EndDate, dash(p.ClientCompanyName), dash(p.DevCompanyName))
				}
				pageFooter(w, result)
			})
		},
	}
	list.Flags().StringVar(&filter.Keyword, "keyword", "", "title search")
	list.Flags().StringVar(&status, "status", "", "CONTRACT, IN_PROGRESS, DELIVERED, MAINTENANCE or ON_HOLD")
	addPageFlags(list, &filter.PageParams)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a project and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.services.Projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(p, "", func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%d\n", p.ID)
				fmt.Fprintf(w, "Title\t%s\n", p.Title)
				fmt.Fprintf(w, "Status\t%s\n", p.Status)
				fmt.Fprintf(w, "Period\t%s ~ %s\n", p.StartDate, p.EndDate)
				fmt.Fprintf(w, "Client\t%s\n", dash(p.ClientCompanyName))
				fmt.Fprintf(w, "Developer\t%s\n", dash(p.DevCompanyName))
				fmt.Fprintf(w, "Managers\t%s\n", memberNames(p.Managers()))
				fmt.Fprintf(w, "Participants\t%s\n", memberNames(p.Participants()))
				if p.Description != "" {
					fmt.Fprintf(w, "\n%s\n", p.Description)
				}
			})
		},
	}

	var (
		create  domain.CreateProjectRequest
		members []string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseProjectMembers(members)
			if err != nil {
				return err
			}
			create.Members = inputs
			p, err := a.services.Projects.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.done("project %d created", p.ID)
		},
	}
	var createStatus string
	f := createCmd.Flags()
	f.StringVar(&create.Title, "title", "", "project title")
	f.StringVar(&create.Description, "description", "", "description")
	f.StringVar(&create.StartDate, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&create.EndDate, "end", "", "end date (YYYY-MM-DD)")
	f.StringVar(&createStatus, "status", string(domain.ProjectStatusContract), "initial status")
	f.Int64Var(&create.ClientCompanyID, "client", 0, "client company id")
	f.Int64Var(&create.DevCompanyID, "developer", 0, "developer company id")
	f.StringArrayVar(&members, "member", nil, "member as <id>:<MANAGER|PARTICIPANT>, repeatable")
	createCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		s, err := domain.ParseProjectStatus(createStatus)
		if err != nil {
			return err
		}
		create.Status = s
		return nil
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Projects.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return a.done("project %d deleted", id)
		},
	}

	requests := &cobra.Command{
		Use:   "requests <id>",
		Short: "List approval requests across a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := a.services.Projects.Requests(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.renderRequests(list)
		},
	}

	cmd.AddCommand(list, get, createCmd, del, requests)
	return cmd
}

// parseProjectMembers reads values written as <id>:<role>
func parseProjectMembers(raw []string) ([]domain.ProjectMemberInput, error) {
	out := make([]domain.ProjectMemberInput, 0, len(raw))
	for _, r := range raw {
		idPart, rolePart, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("member %q must be written as <id>:<role>", r)
		}
		id, err := parseID(idPart)
		if err != nil {
			return nil, err
		}
		role, err := domain.ParseProjectRole(rolePart)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ProjectMemberInput{MemberID: id, Role: role})
	}
	return out, nil
}

func memberNames(members []domain.ProjectMember) string {
	if len(members) == 0 {
		return "-"
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return strings.Join(names, ", ")
}

func (a *app) renderRequests(list []domain.ApprovalRequest) error {
	return a.render(list, "ID\tTASK\tTITLE\tSTATUS\tAUTHOR\tCREATED", func(w *tabwriter.Writer) {
		for _, r := range list {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n", r.ID, r.TaskID, r.Title, r.Status, dash(r.Author.Name), formatTime(r.CreatedAt))
		}
	})
}
