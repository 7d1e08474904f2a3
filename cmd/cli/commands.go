package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var (
	joinUsername string
	joinSkill    int
	joinLatency  int
	joinRegion   string
	eventsAfter  string
)

func init() {
	joinCmd.Flags().StringVar(&joinUsername, "username", "", "Display name of the player")
	joinCmd.Flags().IntVar(&joinSkill, "skill", 1500, "Skill rating (0-5000)")
	joinCmd.Flags().IntVar(&joinLatency, "latency", 50, "Measured latency in milliseconds (0-1000)")
	joinCmd.Flags().StringVar(&joinRegion, "region", "us-east", "Preferred server region")
	eventsCmd.Flags().StringVar(&eventsAfter, "after", "", "Only show events after this id")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(runPassCmd)
	rootCmd.AddCommand(totalMatchesCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.get("/health")
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <player-id>",
	Short: "Put a player in the matchmaking queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := joinUsername
		if username == "" {
			username = args[0]
		}
		return api.post("/api/matchmaking/joinQueue", map[string]any{
			"player_id":    args[0],
			"username":     username,
			"skill_rating": joinSkill,
			"latency":      joinLatency,
			"region":       joinRegion,
		})
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave <player-id>",
	Short: "Remove a player from the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.post("/api/matchmaking/leaveQueue", map[string]string{"player_id": args[0]})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the queue size and estimated wait",
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.get("/api/matchmaking/queueStatus")
	},
}

var positionCmd = &cobra.Command{
	Use:   "position <player-id>",
	Short: "Show a player's position in the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.get("/api/matchmaking/queuePosition/" + url.PathEscape(args[0]))
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <player-id>",
	Short: "Show the match a player was placed in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.get("/api/matchmaking/matchResult/" + url.PathEscape(args[0]))
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <player-id>",
	Short: "List notifications delivered to a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/api/matchmaking/events/" + url.PathEscape(args[0])
		if eventsAfter != "" {
			endpoint += "?after=" + url.QueryEscape(eventsAfter)
		}
		return api.get(endpoint)
	},
}

var runPassCmd = &cobra.Command{
	Use:   "run-pass",
	Short: "Trigger a matching pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.post("/api/matchmaking/runPass", nil)
	},
}

var totalMatchesCmd = &cobra.Command{
	Use:   "total-matches",
	Short: "Show how many matches have been created",
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.get("/api/stats/totalMatches")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.get("/metrics")
	},
}

// client issues requests against one server and prints the replies.
type client struct {
	host    string
	timeout time.Duration
	http    http.Client
}

func (c *client) get(endpoint string) error {
	req, err := http.NewRequest(http.MethodGet, c.host+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

func (c *client) post(endpoint string, payload any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, c.host+endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do prints the response and fails on any status of 400 or above.
func (c *client) do(req *http.Request) error {
	fmt.Printf("%s %s\n", req.Method, req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println(string(body))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
