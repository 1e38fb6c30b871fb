// Command botenginectl is an operator CLI that drives a running botengined
// instance's admin HTTP API: start/stop/restart/logs/delete, by bot id.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "botenginectl",
		Usage: "operate bots hosted by a botengined instance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "http://localhost:8080", Usage: "botengined base URL", EnvVars: []string{"BOTENGINE_ADDR"}},
			&cli.StringFlag{Name: "user", Usage: "caller id sent as X-User-Id", EnvVars: []string{"BOTENGINE_USER"}},
		},
		Commands: []*cli.Command{
			botCommand("start", http.MethodPost, "/api/bots/%s/start"),
			botCommand("stop", http.MethodPost, "/api/bots/%s/stop"),
			botCommand("restart", http.MethodPost, "/api/bots/%s/restart"),
			botCommand("running", http.MethodGet, "/api/bots/%s/running"),
			botCommand("logs", http.MethodGet, "/api/bots/%s/logs"),
			botCommand("delete", http.MethodDelete, "/api/bots/%s"),
			{
				Name:      "set-file",
				Usage:     "overwrite an existing bot file",
				ArgsUsage: "<bot-id> <filename> <path-to-new-content>",
				Action:    setFileAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func botCommand(name, method, pathTemplate string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     name + " a bot",
		ArgsUsage: "<bot-id>",
		Action: func(c *cli.Context) error {
			botID := c.Args().First()
			if botID == "" {
				return fmt.Errorf("missing bot id")
			}
			return doRequest(c, method, fmt.Sprintf(pathTemplate, botID), nil)
		},
	}
}

func setFileAction(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 3 {
		return fmt.Errorf("usage: set-file <bot-id> <filename> <path-to-new-content>")
	}
	botID, filename, contentPath := args.Get(0), args.Get(1), args.Get(2)
	content, err := os.ReadFile(contentPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", contentPath, err)
	}
	path := fmt.Sprintf("/api/bots/%s/files/%s", botID, filename)
	return doRequest(c, http.MethodPut, path, strings.NewReader(string(content)))
}

func doRequest(c *cli.Context, method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, c.String("addr")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-Id", c.String("user"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var v any
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
