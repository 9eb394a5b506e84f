package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	teamboardsdk "teamboard/sdk/go"
)

const defaultServerURL = "http://127.0.0.1:5000"

func newClient() (*teamboardsdk.Client, error) {
	c := teamboardsdk.New(viper.GetString("server"))
	c.BearerToken = viper.GetString("token")
	if c.BearerToken == "" {
		return nil, fmt.Errorf("a token is required: run 'teamboard login' and export TEAMBOARD_TOKEN")
	}
	return c, nil
}

func withClient(ctx context.Context, fn func(context.Context, *teamboardsdk.Client) error) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return fn(ctx, c)
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password required")
			}
			c := teamboardsdk.New(viper.GetString("server"))
			s, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(s)
			}
			fmt.Printf("logged in as %s (%s)\n", s.User.Name, s.User.Role)
			fmt.Printf("export TEAMBOARD_TOKEN=%s\n", s.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *teamboardsdk.Client) error {
				d, err := c.Dashboard(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d)
				}
				p := d.PerformanceData
				fmt.Printf("campaigns: %d (%d active)  open tasks: %d  completed: %d  team productivity: %d%%\n",
					p.Campaigns, p.ActiveCampaigns, p.OpenTasks, p.CompletedTasks, p.TeamProductivity)

				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Campaign", "Progress", "Status"})
				for _, camp := range d.Campaigns {
					tw.AppendRow(table.Row{camp.Name, fmt.Sprintf("%d%%", camp.Progress), camp.Status})
				}
				tw.Render()

				if len(p.TeamMembers) > 0 {
					mw := table.NewWriter()
					mw.SetOutputMirror(os.Stdout)
					mw.AppendHeader(table.Row{"Member", "Role", "Done", "Total", "On time", "Score"})
					for _, m := range p.TeamMembers {
						mw.AppendRow(table.Row{m.Name, m.Role, m.TasksCompleted, m.TasksTotal, m.OnTimeRate, m.ProductivityScore})
					}
					mw.Render()
				}
				return nil
			})
		},
	}
	return cmd
}

func tasksCmd() *cobra.Command {
	var userID, campaignID int64
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *teamboardsdk.Client) error {
				tasks, err := c.Tasks(ctx, userID, campaignID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "User", "Campaign", "Due"})
				for _, t := range tasks {
					campaign := ""
					if t.CampaignID != nil {
						campaign = fmt.Sprint(*t.CampaignID)
					}
					due := ""
					if t.DueDate != nil {
						due = t.DueDate.Format("2006-01-02")
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.UserID, campaign, due})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "only tasks owned by this user id")
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "only tasks in this campaign id")
	cmd.AddCommand(taskDoneCmd())
	return cmd
}

func taskDoneCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "done",
		Short: "Mark a task completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == 0 {
				return fmt.Errorf("--id required")
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *teamboardsdk.Client) error {
				t, err := c.SetTaskStatus(ctx, id, "completed")
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(t)
				}
				fmt.Printf("task %d %s\n", t.ID, t.Status)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "task id")
	return cmd
}

func activitiesCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List recent activity, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *teamboardsdk.Client) error {
				items, err := c.Activities(ctx, userID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"When", "User", "Action", "Resource"})
				for _, a := range items {
					resource := a.ResourceType
					if a.ResourceID != nil {
						resource = fmt.Sprintf("%s #%d", resource, *a.ResourceID)
					}
					tw.AppendRow(table.Row{a.Timestamp.Local().Format(time.DateTime), a.UserID, a.Action, resource})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "only activity of this user id")
	return cmd
}

func metricsCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show productivity metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *teamboardsdk.Client) error {
				var items []teamboardsdk.Metric
				if userID != 0 {
					m, err := c.UserMetrics(ctx, userID)
					if err != nil {
						return err
					}
					items = []teamboardsdk.Metric{m}
				} else {
					all, err := c.Metrics(ctx)
					if err != nil {
						return err
					}
					items = all
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"User", "Done", "Total", "On time", "Score"})
				for _, m := range items {
					tw.AppendRow(table.Row{m.UserID, m.TasksCompleted, m.TasksTotal, fmt.Sprintf("%d%%", m.OnTimeRate), m.ProductivityScore})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "a single user id")
	return cmd
}
