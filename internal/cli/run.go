package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт группу команд для управления runs.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage runs",
	}

	cmd.AddCommand(
		newRunStartCmd(clientFn, outputFn),
		newRunListCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunWatchCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var callerID string
	var follow bool

	cmd := &cobra.Command{
		Use:   "start GRAPH_FILE",
		Short: "Run a graph from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			spec, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read graph file: %w", err)
			}
			if !json.Valid(spec) {
				return fmt.Errorf("graph file %s is not valid JSON", args[0])
			}

			run, err := client.RunGraph(spec, callerID)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run started: %s", run.ID))

			if follow {
				return followRun(cmd, client, out, run.ID)
			}

			out.Print(
				[]string{"ID", "GRAPH_ID", "STATUS", "STARTED"},
				[][]string{{run.ID, run.GraphID, run.Status, run.StartedAt}},
				run,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&callerID, "caller", "cli", "Caller ID attached to the run")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow the event stream until the run completes")

	return cmd
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns()
			if err != nil {
				return err
			}

			headers := []string{"ID", "GRAPH_ID", "STATUS", "NODES", "COST", "STARTED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID, r.GraphID, r.Status,
					strconv.Itoa(r.Nodes),
					formatCost(r.TotalCost),
					r.StartedAt,
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "GRAPH_ID", "STATUS", "COST", "ERROR", "STARTED"},
				[][]string{{run.ID, run.GraphID, run.Status, formatCost(run.TotalCost), run.Error, run.StartedAt}},
				run,
			)

			if out.jsonMode || len(run.Results) == 0 {
				return nil
			}

			headers := []string{"NODE", "STATUS", "COST", "ERROR"}
			rows := make([][]string, 0, len(run.Results))
			for _, res := range run.Results {
				rows = append(rows, []string{res.NodeID, res.Status, formatCost(res.Cost), res.Error})
			}
			out.Table(headers, rows)
			return nil
		},
	}
}

func newRunWatchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "watch ID",
		Short: "Stream run events until completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return followRun(cmd, clientFn(), outputFn(), args[0])
		},
	}
}

// followRun печатает события SSE-потока по мере их прихода.
func followRun(cmd *cobra.Command, client *Client, out *Output, runID string) error {
	return client.Stream(cmd.Context(), runID, func(ev StreamEvent) {
		if out.jsonMode {
			out.JSON(ev)
			return
		}

		switch ev.Type {
		case "connected", "complete":
			out.Success(fmt.Sprintf("[%s]", ev.Type))
		case "node_started":
			out.Success(fmt.Sprintf("[%s] %s", ev.Type, ev.NodeID))
		case "node_completed":
			out.Success(fmt.Sprintf("[%s] %s cost=%s", ev.Type, ev.NodeID, formatCost(costOf(ev.Data))))
		case "node_failed":
			out.Success(fmt.Sprintf("[%s] %s error=%v", ev.Type, ev.NodeID, ev.Data["error"]))
		case "log":
			out.Success(fmt.Sprintf("[%s] %v", ev.Type, ev.Data["message"]))
		default:
			out.Success(fmt.Sprintf("[%s]", ev.Type))
		}
	})
}

func costOf(data map[string]any) float64 {
	if v, ok := data["cost"].(float64); ok {
		return v
	}
	return 0
}

func formatCost(cost float64) string {
	if cost == 0 {
		return "-"
	}
	return strconv.FormatFloat(cost, 'f', 6, 64)
}
