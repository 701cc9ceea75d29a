package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/quietloop/noisebox/internal/protocol"
)

// apitoolTimeout bounds how long a single request/reply round trip may
// take before the tool gives up and reports failure.
const apitoolTimeout = 5 * time.Second

// runApitool sends exactly one command to a running command server and
// prints exactly one reply, grounded in the teacher's --play/direct-mode
// one-shot CLI style (cmd/direttampd/main.go's runDirect), generalized
// from "play these URLs" to "send this one wire command".
func runApitool(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "apitool: a command name is required (TOGGLE_PLAY, NEXT_SONG, LIST_SONGS, LIST_PLAYLISTS)")
		return 2
	}
	commandName, rest := args[0], args[1:]

	fs := flag.NewFlagSet("apitool "+commandName, flag.ContinueOnError)
	addr := fs.String("addr", "localhost:9821", "command server address (host:port)")
	playState := fs.String("play_state", "", "TOGGLE_PLAY only: explicit target state, 'true' or 'false'")
	pageToken := fs.String("page_token", "", "LIST_SONGS/LIST_PLAYLISTS only: page token from a previous reply")
	maxNumEntries := fs.Int("max_num_entries", 0, "LIST_SONGS/LIST_PLAYLISTS only: page size")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	cmd, err := buildCommand(commandName, *playState, *pageToken, *maxNumEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apitool: %v\n", err)
		return 2
	}

	url := "ws://" + *addr + commandServerPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apitool: dial %s: %v\n", url, err)
		return 1
	}
	defer conn.Close()

	data, err := json.Marshal(protocol.WrapCommand(cmd))
	if err != nil {
		fmt.Fprintf(os.Stderr, "apitool: %v\n", err)
		return 1
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		fmt.Fprintf(os.Stderr, "apitool: send: %v\n", err)
		return 1
	}

	conn.SetReadDeadline(time.Now().Add(apitoolTimeout))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "apitool: read reply: %v\n", err)
		return 1
	}

	var msg protocol.Message
	if err := json.Unmarshal(reply, &msg); err != nil {
		fmt.Fprintf(os.Stderr, "apitool: parse reply: %v\n", err)
		return 1
	}
	pretty, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "apitool: %v\n", err)
		return 1
	}
	fmt.Println(string(pretty))
	return 0
}

func buildCommand(name, playState, pageToken string, maxNumEntries int) (protocol.Command, error) {
	switch name {
	case "TOGGLE_PLAY":
		c := protocol.TogglePlayCommand{}
		if playState != "" {
			v, err := strconv.ParseBool(playState)
			if err != nil {
				return nil, fmt.Errorf("--play_state must be 'true' or 'false': %w", err)
			}
			c.PlayState = &v
		}
		return c, nil
	case "NEXT_SONG":
		return protocol.NextSongCommand{}, nil
	case "LIST_SONGS":
		return protocol.ListSongsCommand{PageToken: pageToken, MaxNumEntries: maxNumEntries}, nil
	case "LIST_PLAYLISTS":
		return protocol.ListPlaylistsCommand{PageToken: pageToken, MaxNumEntries: maxNumEntries}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}
