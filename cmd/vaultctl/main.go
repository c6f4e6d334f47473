package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"worldvault/internal/protocol"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: vaultctl <command> [flags]

commands:
  state      print server state
  profiles   list profiles
  mirror     print off-site mirror stats
  create     create a profile
  save       save a profile
  load       load a profile
  delete     delete a profile (documents + directory)
  archive    archive a profile`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "state":
		httpGet(args, "/admin/v1/state")
	case "profiles":
		httpGet(args, "/admin/v1/profiles")
	case "mirror":
		httpGet(args, "/admin/v1/mirror")
	case "create":
		wsRequest(args, protocol.TypeProfileCreate)
	case "save":
		wsRequest(args, protocol.TypeSaveAll)
	case "load":
		wsRequest(args, protocol.TypeLoadAll)
	case "delete":
		wsRequest(args, protocol.TypeProfileDelete)
	case "archive":
		wsRequest(args, protocol.TypeArchive)
	default:
		usage()
	}
}

func httpGet(args []string, path string) {
	fs := flag.NewFlagSet(path, flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + path
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

func wsRequest(args []string, reqType string) {
	fs := flag.NewFlagSet(reqType, flag.ExitOnError)
	wsURL := fs.String("url", "ws://127.0.0.1:8080/v1/ws", "server ws url")
	profileID := fs.String("profile", "", "profile id")
	seed := fs.Int64("seed", 0, "explicit world seed (create only; 0: random)")
	_ = fs.Parse(args)

	conn, _, err := websocket.DefaultDialer.Dial(strings.TrimSpace(*wsURL), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()

	req := protocol.RequestMsg{
		Type:            reqType,
		ProtocolVersion: protocol.Version,
		RequestID:       uuid.NewString(),
		ProfileID:       strings.TrimSpace(*profileID),
	}
	if reqType == protocol.TypeProfileCreate && *seed != 0 {
		req.Seed = seed
	}

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(req); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}

	var res protocol.ResultMsg
	if err := json.Unmarshal(msg, &res); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	if !res.OK {
		os.Exit(1)
	}
}
