// Command cli posts commands to a running bot's HTTP endpoint. It keeps
// a small local state file so the server URL only needs to be given once.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keshon/datastore"
)

const stateKey = "server_url"

type commandRequest struct {
	Channel    string `json:"channel"`
	User       string `json:"user"`
	EventInput string `json:"event_input"`
	EventType  string `json:"event_type"`
}

type replyEnvelope struct {
	Text      string `json:"text"`
	Success   bool   `json:"success"`
	ErrorKind string `json:"error,omitempty"`
}

func main() {
	server := flag.String("server", "", "bot base URL, e.g. http://localhost:8080 (remembered)")
	user := flag.String("user", "cli", "user id to issue the command as")
	channel := flag.String("channel", "cli", "channel id to attribute the command to")
	echo := flag.Bool("echo", false, "send an echo event instead of a command")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: cli [-server URL] [-user U] [-channel C] <command...>")
		os.Exit(2)
	}

	ds, err := datastore.New(statePath())
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	defer ds.Close()

	base := *server
	if base == "" {
		if v, ok := ds.Get(stateKey); ok {
			base, _ = v.(string)
		}
	}
	if base == "" {
		fmt.Fprintln(os.Stderr, "no server URL known yet, pass -server once")
		os.Exit(2)
	}
	ds.Add(stateKey, base)

	eventType := "command"
	if *echo {
		eventType = "echo"
	}

	body, err := json.Marshal(commandRequest{
		Channel:    *channel,
		User:       *user,
		EventInput: strings.Join(flag.Args(), " "),
		EventType:  eventType,
	})
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(strings.TrimRight(base, "/")+"/command", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	defer resp.Body.Close()

	var env replyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Fatalf("[ERR] Bad response (%s): %v", resp.Status, err)
	}

	fmt.Println(env.Text)
	if !env.Success {
		os.Exit(1)
	}
}

func statePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".server-banker-cli.json"
	}
	return filepath.Join(home, ".server-banker-cli.json")
}
