package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/domain"
)

func newStagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stages",
		Aliases: []string{"stage"},
		Short:   "Manage a project's stages",
	}

	list := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List stages in board order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			stages, err := a.services.Stages.List(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			return a.render(stages, "ID\tORDER\tNAME\tTASKS", func(w *tabwriter.Writer) {
				for _, s := range stages {
					fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", s.ID, s.Order, s.Name, len(s.Tasks))
				}
			})
		},
	}

	var create domain.CreateStageRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a stage to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.services.Stages.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.done("stage %d created", s.ID)
		},
	}
	createCmd.Flags().Int64Var(&create.ProjectID, "project", 0, "project id")
	createCmd.Flags().StringVar(&create.Name, "name", "", "stage name")

	var move domain.MoveStageRequest
	moveCmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Change a stage's position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Stages.Move(cmd.Context(), id, move); err != nil {
				return err
			}
			return a.done("stage %d moved to position %d", id, move.Order)
		},
	}
	moveCmd.Flags().IntVar(&move.Order, "order", 0, "zero-based position")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Stages.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return a.done("stage %d deleted", id)
		},
	}

	cmd.AddCommand(list, createCmd, moveCmd, del)
	return cmd
}

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks and their approval requests",
	}

	list := &cobra.Command{
		Use:   "list <stage-id>",
		Short: "List a stage's tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageID, err := parseID(args[0])
			if err != nil {
				return err
			}
			tasks, err := a.services.Tasks.List(cmd.Context(), stageID)
			if err != nil {
				return err
			}
			return a.render(tasks, "ID\tORDER\tTITLE\tSTATUS", func(w *tabwriter.Writer) {
				for _, t := range tasks {
					fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", t.ID, t.Order, t.Title, t.Status)
				}
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task with its approval requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.services.Tasks.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			requests, err := a.services.Tasks.Requests(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := struct {
				*domain.Task
				Requests []domain.ApprovalRequest `json:"requests"`
			}{t, requests}
			return a.render(out, "", func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%d\n", t.ID)
				fmt.Fprintf(w, "Title\t%s\n", t.Title)
				fmt.Fprintf(w, "Status\t%s\n", t.Status)
				fmt.Fprintf(w, "Stage\t%d\n", t.StageID)
				fmt.Fprintf(w, "Created\t%s\n", formatTime(t.CreatedAt))
				if t.Content != "" {
					fmt.Fprintf(w, "\n%s\n", t.Content)
				}
				fmt.Fprintf(w, "\nRequests\t%d\n", len(requests))
				for _, r := range requests {
					fmt.Fprintf(w, "  #%d\t%s\t%s\n", r.ID, r.Title, r.Status)
				}
			})
		},
	}

	var create domain.CreateTaskRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a task to a stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.services.Tasks.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.done("task %d created", t.ID)
		},
	}
	createCmd.Flags().Int64Var(&create.StageID, "stage", 0, "stage id")
	createCmd.Flags().StringVar(&create.Title, "title", "", "task title")
	createCmd.Flags().StringVar(&create.Content, "content", "", "task description")

	var move domain.MoveTaskRequest
	moveCmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task within or across stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Tasks.Move(cmd.Context(), id, move); err != nil {
				return err
			}
			return a.done("task %d moved to stage %d position %d", id, move.StageID, move.Order)
		},
	}
	moveCmd.Flags().Int64Var(&move.StageID, "stage", 0, "target stage id")
	moveCmd.Flags().IntVar(&move.Order, "order", 0, "zero-based position")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return a.done("task %d deleted", id)
		},
	}

	var (
		reqTitle, reqContent string
		links, files         []string
	)
	request := &cobra.Command{
		Use:   "request <task-id>",
		Short: "Ask for approval of a task, with optional links and files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			attachments, closeAll, err := openAttachments(files)
			if err != nil {
				return err
			}
			defer closeAll()

			r, err := a.services.Tasks.CreateRequest(cmd.Context(), id, domain.CreateApprovalRequest{
				Title:   reqTitle,
				Content: reqContent,
				Links:   linkInputs(links),
				Files:   attachments,
			})
			if err != nil {
				return err
			}
			return a.done("approval request %d submitted", r.ID)
		},
	}
	request.Flags().StringVar(&reqTitle, "title", "", "request title")
	request.Flags().StringVar(&reqContent, "content", "", "request body")
	request.Flags().StringArrayVar(&links, "link", nil, "URL to attach, repeatable")
	request.Flags().StringArrayVar(&files, "file", nil, "file to upload, repeatable")

	cmd.AddCommand(list, get, createCmd, moveCmd, del, request)
	return cmd
}

func newRequestsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"request"},
		Short:   "Approve or reject approval requests",
	}

	decision := func(use, short string, approve bool) *cobra.Command {
		var (
			content      string
			links, files []string
		)
		c := &cobra.Command{
			Use:   use + " <request-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				attachments, closeAll, err := openAttachments(files)
				if err != nil {
					return err
				}
				defer closeAll()

				req := domain.DecisionRequest{Content: content, Links: linkInputs(links), Files: attachments}
				decide := a.services.Requests.Reject
				if approve {
					decide = a.services.Requests.Approve
				}
				resp, err := decide(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				return a.done("request %d %s (response %d)", id, resp.Status, resp.ID)
			},
		}
		c.Flags().StringVar(&content, "content", "", "comment for the requester")
		c.Flags().StringArrayVar(&links, "link", nil, "URL to attach, repeatable")
		c.Flags().StringArrayVar(&files, "file", nil, "file to upload, repeatable")
		return c
	}

	response := &cobra.Command{
		Use:   "response <response-id>",
		Short: "Show an approval or rejection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.services.Requests.Response(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(r, "", func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%d\n", r.ID)
				fmt.Fprintf(w, "Request\t%d\n", r.RequestID)
				fmt.Fprintf(w, "Status\t%s\n", r.Status)
				fmt.Fprintf(w, "Author\t%s\n", dash(r.Author.Name))
				fmt.Fprintf(w, "Created\t%s\n", formatTime(r.CreatedAt))
				for _, l := range r.Links {
					fmt.Fprintf(w, "Link\t%s\n", l.URL)
				}
				for _, f := range r.Files {
					fmt.Fprintf(w, "File\t%s\t%s\n", f.FileName, f.FileURL)
				}
				if r.Content != "" {
					fmt.Fprintf(w, "\n%s\n", r.Content)
				}
			})
		},
	}

	cmd.AddCommand(
		decision("approve", "Approve a request", true),
		decision("reject", "Reject a request", false),
		response,
	)
	return cmd
}

func linkInputs(urls []string) []domain.LinkInput {
	out := make([]domain.LinkInput, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.LinkInput{URL: u})
	}
	return out
}

// openAttachments opens every path; the returned func closes them
func openAttachments(paths []string) ([]domain.Attachment, func(), error) {
	var (
		out   []domain.Attachment
		files []*os.File
	)
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open %s: %w", p, err)
		}
		files = append(files, f)
		out = append(out, domain.Attachment{FileName: filepath.Base(p), Content: f})
	}
	return out, closeAll, nil
}
