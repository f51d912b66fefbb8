package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/domain"
)

func addPageFlags(cmd *cobra.Command, p *domain.PageParams) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&p.Size, "size", 10, "page size")
}

func newCompaniesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "Manage client and developer companies",
	}

	var (
		view string
		page domain.PageParams
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			var v domain.CompanyView
			if view != "" {
				parsed, err := domain.ParseCompanyView(view)
				if err != nil {
					return err
				}
				v = parsed
			}
			result, err := a.services.Companies.List(cmd.Context(), v, page)
			if err != nil {
				return err
			}
			return a.render(result, "ID\tNAME\tBUSINESS NO.\tCEO\tSTATUS", func(w *tabwriter.Writer) {
				for _, c := range result.Content {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, dash(c.BusinessNumber), dash(c.CEOName), c.Status)
				}
				pageFooter(w, result)
			})
		},
	}
	list.Flags().StringVar(&view, "view", "", "ACTIVE, INACTIVE or ALL")
	addPageFlags(list, &page)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.services.Companies.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(c, "", func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%d\n", c.ID)
				fmt.Fprintf(w, "Name\t%s\n", c.Name)
				fmt.Fprintf(w, "Business no.\t%s\n", dash(c.BusinessNumber))
				fmt.Fprintf(w, "CEO\t%s\n", dash(c.CEOName))
				fmt.Fprintf(w, "Phone\t%s\n", dash(c.Phone))
				fmt.Fprintf(w, "Email\t%s\n", dash(c.Email))
				fmt.Fprintf(w, "Address\t%s\n", dash(c.Address))
				fmt.Fprintf(w, "Status\t%s\n", c.Status)
				fmt.Fprintf(w, "Created\t%s\n", formatTime(c.CreatedAt))
			})
		},
	}

	var create domain.CreateCompanyRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a company (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.services.Companies.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.done("company %d created", c.ID)
		},
	}
	f := createCmd.Flags()
	f.StringVar(&create.Name, "name", "", "company name")
	f.StringVar(&create.BusinessNumber, "business-number", "", "business registration number")
	f.StringVar(&create.CEOName, "ceo", "", "CEO name")
	f.StringVar(&create.Phone, "phone", "", "phone number")
	f.StringVar(&create.Email, "email", "", "contact email")
	f.StringVar(&create.Address, "address", "", "address")

	status := &cobra.Command{
		Use:   "status <id> <ACTIVE|INACTIVE>",
		Short: "Activate or deactivate a company (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := domain.ParseCompanyStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.services.Companies.SetStatus(cmd.Context(), id, s); err != nil {
				return err
			}
			return a.done("company %d is now %s", id, s)
		},
	}

	members := &cobra.Command{
		Use:   "members <id>",
		Short: "List a company's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := a.services.Companies.Members(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(list, "ID\tACCOUNT\tNAME\tPOSITION\tROLE", func(w *tabwriter.Writer) {
				for _, m := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.AuthID, m.Name, dash(m.Position), m.Role)
				}
			})
		},
	}

	cmd.AddCommand(list, get, createCmd, status, members)
	return cmd
}
